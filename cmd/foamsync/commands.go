package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/foampro/foamsync/internal/app"
	"github.com/foampro/foamsync/internal/calc"
	"github.com/foampro/foamsync/internal/model"
	"github.com/foampro/foamsync/internal/prefs"
	"github.com/foampro/foamsync/internal/state"
	"github.com/foampro/foamsync/internal/syncer"
)

// envPassword supplies the password or crew PIN when the flag is omitted.
const envPassword = "FOAMSYNC_PASSWORD"

type command struct {
	summary string
	run     func(ctx context.Context, opts app.Options, args []string) error
}

var commandOrder = []string{"login", "signup", "crew-login", "logout", "push", "pull", "quote"}

var commands = map[string]command{
	"login":      {summary: "sign in as a company administrator", run: runLogin},
	"signup":     {summary: "create a company account and sign in", run: runSignup},
	"crew-login": {summary: "sign in a crew device with the company PIN", run: runCrewLogin},
	"logout":     {summary: "forget the session on this device", run: runLogout},
	"push":       {summary: "push local company state now", run: runPush},
	"pull":       {summary: "replace local state with the server copy", run: runPull},
	"quote":      {summary: "save a draft estimate from dimensions", run: runQuote},
}

func credentials(fs *flag.FlagSet, args []string, secretName string) (user, secret string, err error) {
	u := fs.String("user", "", "company username")
	s := fs.String(secretName, "", secretName+" (or "+envPassword+")")
	if err := fs.Parse(args); err != nil {
		return "", "", err
	}
	user = strings.TrimSpace(*u)
	secret = *s
	if secret == "" {
		secret = os.Getenv(envPassword)
	}
	if user == "" || secret == "" {
		return "", "", fmt.Errorf("-user and -%s are required", secretName)
	}
	return user, secret, nil
}

// withApp wires the client, runs fn and waits for background work.
func withApp(ctx context.Context, opts app.Options, fn func(*app.App) error) error {
	a, err := app.New(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func finishLogin(ctx context.Context, a *app.App, session model.Session) error {
	if err := a.Sync.Login(ctx, session); err != nil {
		a.Log.WithError(err).Warn("initial load incomplete")
		fmt.Fprintf(os.Stderr, "warning: signed in, but company data could not be loaded: %v\n", err)
	}
	name := session.Username
	if err := prefs.Update(a.PrefsPath, func(p *prefs.Prefs) { p.LastUser = name }); err != nil {
		a.Log.WithError(err).Warn("save last user")
	}
	company := session.CompanyName
	if company == "" {
		company = session.Username
	}
	fmt.Printf("Signed in to %s as %s\n", company, session.Role)
	return nil
}

func runLogin(ctx context.Context, opts app.Options, args []string) error {
	user, password, err := credentials(flag.NewFlagSet("login", flag.ContinueOnError), args, "password")
	if err != nil {
		return err
	}
	return withApp(ctx, opts, func(a *app.App) error {
		session, err := a.Gateway.Login(ctx, user, password)
		if err != nil {
			return err
		}
		return finishLogin(ctx, a, session)
	})
}

func runSignup(ctx context.Context, opts app.Options, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	company := fs.String("company", "", "company display name")
	user, password, err := credentials(fs, args, "password")
	if err != nil {
		return err
	}
	if strings.TrimSpace(*company) == "" {
		return errors.New("-company is required")
	}
	return withApp(ctx, opts, func(a *app.App) error {
		session, err := a.Gateway.Signup(ctx, user, password, strings.TrimSpace(*company))
		if err != nil {
			return err
		}
		return finishLogin(ctx, a, session)
	})
}

func runCrewLogin(ctx context.Context, opts app.Options, args []string) error {
	user, pin, err := credentials(flag.NewFlagSet("crew-login", flag.ContinueOnError), args, "pin")
	if err != nil {
		return err
	}
	return withApp(ctx, opts, func(a *app.App) error {
		session, err := a.Gateway.CrewLogin(ctx, user, pin)
		if err != nil {
			return err
		}
		return finishLogin(ctx, a, session)
	})
}

func runLogout(ctx context.Context, opts app.Options, _ []string) error {
	return withApp(ctx, opts, func(a *app.App) error {
		if err := a.Sync.Logout(); err != nil {
			return err
		}
		fmt.Println("Signed out")
		return nil
	})
}

// started runs fn after session recovery and the initial load.
func started(ctx context.Context, opts app.Options, fn func(*app.App) error) error {
	return withApp(ctx, opts, func(a *app.App) error {
		if err := a.Sync.Start(ctx); err != nil {
			if errors.Is(err, syncer.ErrUnsafeBaseline) {
				return fmt.Errorf("company data could not be loaded: %w", err)
			}
			a.Log.WithError(err).Warn("startup sync incomplete")
			fmt.Fprintf(os.Stderr, "warning: using local data: %v\n", err)
		}
		if a.Store.Snapshot().Session == nil {
			return errors.New("not signed in; run foamsync login first")
		}
		return fn(a)
	})
}

func runPush(ctx context.Context, opts app.Options, _ []string) error {
	return started(ctx, opts, func(a *app.App) error {
		if err := a.Sync.Push(ctx); err != nil {
			return err
		}
		fmt.Println("Pushed")
		return nil
	})
}

func runPull(ctx context.Context, opts app.Options, _ []string) error {
	return started(ctx, opts, func(a *app.App) error {
		if err := a.Sync.Pull(ctx); err != nil {
			return err
		}
		snap := a.Store.Snapshot()
		fmt.Printf("Pulled %d jobs, %d customers\n", len(snap.Data.SavedEstimates), len(snap.Data.Customers))
		return nil
	})
}

func runQuote(ctx context.Context, opts app.Options, args []string) error {
	fs := flag.NewFlagSet("quote", flag.ContinueOnError)
	customer := fs.String("customer", "", "customer name")
	length := fs.Float64("length", 0, "building length in feet")
	width := fs.Float64("width", 0, "building width in feet")
	wallHeight := fs.Float64("wall-height", 0, "wall height in feet")
	pitch := fs.String("pitch", "", "roof pitch, e.g. 4/12")
	mode := fs.String("mode", string(model.ModeBuilding), "Building, Walls Only, Flat Area or Custom")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return started(ctx, opts, func(a *app.App) error {
		a.Jobs.NewEstimate()
		form := a.Store.Snapshot().Data.EstimateForm
		form.Mode = model.CalculationMode(*mode)
		form.CustomerProfile.Name = strings.TrimSpace(*customer)
		if *length > 0 {
			form.Length = *length
		}
		if *width > 0 {
			form.Width = *width
		}
		if *wallHeight > 0 {
			form.WallHeight = *wallHeight
		}
		if *pitch != "" {
			form.RoofPitch = *pitch
		}
		a.Store.Dispatch(state.SetForm{Form: form})

		rec, err := a.Jobs.Save(calc.Calculate(a.Store.Snapshot().Data))
		if err != nil {
			return err
		}
		if err := a.Sync.Reconcile(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "warning: saved locally, push failed: %v\n", err)
		}
		fmt.Printf("Saved draft %s for %s: %.0f sqft walls, %.0f sqft roof, $%.2f\n",
			rec.ID, rec.Customer.Name, rec.Results.TotalWallArea, rec.Results.TotalRoofArea, rec.TotalValue)
		return nil
	})
}

// Package calc turns job geometry and company pricing into material and cost
// figures. It has no state and performs no I/O.
package calc

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/foampro/foamsync/internal/model"
)

// metalSurfaceFactor accounts for corrugation ridges on metal surfaces.
const metalSurfaceFactor = 1.15

var (
	ratioPitch  = regexp.MustCompile(`^(\d+(?:\.\d+)?)/12$`)
	degreePitch = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(?:deg|degrees?|°)$`)
	barePitch   = regexp.MustCompile(`^(\d+(?:\.\d+)?)$`)
)

// Pitch is a parsed roof pitch.
type Pitch struct {
	Factor  float64
	Display string
}

// ParsePitch accepts "X/12", "X deg" or a bare rise in twelfths. Empty or
// unrecognised input is treated as flat.
func ParsePitch(input string) Pitch {
	clean := strings.ToLower(strings.TrimSpace(input))
	if clean == "" {
		return Pitch{Factor: 1, Display: "Flat (1.0)"}
	}

	if m := ratioPitch.FindStringSubmatch(clean); m != nil {
		return risePitch(m[1])
	}
	if m := degreePitch.FindStringSubmatch(clean); m != nil {
		deg, _ := strconv.ParseFloat(m[1], 64)
		factor := 1 / math.Cos(deg*math.Pi/180)
		if math.IsInf(factor, 0) || math.IsNaN(factor) || factor < 1 {
			return Pitch{Factor: 1, Display: "Invalid/Flat (1.0)"}
		}
		return Pitch{Factor: factor, Display: fmt.Sprintf("%s° (%.3f)", m[1], factor)}
	}
	if m := barePitch.FindStringSubmatch(clean); m != nil {
		return risePitch(m[1])
	}
	return Pitch{Factor: 1, Display: "Invalid/Flat (1.0)"}
}

func risePitch(raw string) Pitch {
	rise, _ := strconv.ParseFloat(raw, 64)
	factor := math.Sqrt(1 + math.Pow(rise/12, 2))
	return Pitch{Factor: factor, Display: fmt.Sprintf("%s/12 (%.3f)", raw, factor)}
}

// Calculate computes results for the current form in data using the
// company's yields and costs.
func Calculate(data model.AppData) model.CalculationResults {
	form := data.EstimateForm
	slope := ParsePitch(form.RoofPitch).Factor

	surface := 1.0
	if form.IsMetalSurface {
		surface = metalSurfaceFactor
	}

	var r model.CalculationResults
	r.SlopeFactor = slope

	switch form.Mode {
	case model.ModeBuilding:
		r.Perimeter = 2 * (form.Length + form.Width)
		r.BaseWallArea = r.Perimeter * form.WallHeight
		r.BaseRoofArea = form.Length * form.Width * slope
		if form.IncludeGables {
			riseOver12 := math.Sqrt(math.Max(slope*slope-1, 0))
			r.GableArea = form.Width * (form.Width / 2 * riseOver12)
		}
	case model.ModeWallsOnly:
		// Length is total linear footage in this mode.
		r.Perimeter = form.Length
		r.BaseWallArea = form.Length * form.WallHeight
	case model.ModeFlatArea:
		r.Perimeter = 2 * (form.Length + form.Width)
		r.BaseRoofArea = form.Length * form.Width * slope
	}

	var extraWall, extraRoof float64
	for _, a := range form.AdditionalAreas {
		switch a.Type {
		case model.AreaWall:
			extraWall += a.Length * a.Width
		case model.AreaRoof:
			extraRoof += a.Length * a.Width
		}
	}

	r.TotalWallArea = (r.BaseWallArea + r.GableArea + extraWall) * surface
	r.TotalRoofArea = (r.BaseRoofArea + extraRoof) * surface

	r.WallBdFt = r.TotalWallArea * form.WallSettings.Thickness * (1 + form.WallSettings.WastePercentage/100)
	r.RoofBdFt = r.TotalRoofArea * form.RoofSettings.Thickness * (1 + form.RoofSettings.WastePercentage/100)

	addBoardFeet(&r, form.WallSettings.Type, r.WallBdFt)
	addBoardFeet(&r, form.RoofSettings.Type, r.RoofBdFt)

	r.OpenCellSets = sets(r.TotalOpenCellBdFt, data.Yields.OpenCell)
	r.ClosedCellSets = sets(r.TotalClosedCellBdFt, data.Yields.ClosedCell)

	r.OpenCellCost = r.OpenCellSets * data.Costs.OpenCell
	r.ClosedCellCost = r.ClosedCellSets * data.Costs.ClosedCell
	for _, item := range form.Inventory {
		r.InventoryCost += item.Quantity * item.UnitCost
	}
	r.MaterialCost = r.OpenCellCost + r.ClosedCellCost + r.InventoryCost

	rate := data.Costs.LaborRate
	if form.Expenses.LaborRate != nil {
		rate = *form.Expenses.LaborRate
	}
	r.LaborCost = form.Expenses.ManHours * rate
	r.MiscExpenses = form.Expenses.TripCharge + form.Expenses.FuelSurcharge + form.Expenses.Other.Amount

	if form.PricingMode == model.PricingSqFt {
		r.TotalCost = r.TotalWallArea*form.SqFtRates.Wall + r.TotalRoofArea*form.SqFtRates.Roof +
			r.InventoryCost + r.MiscExpenses
	} else {
		r.TotalCost = r.MaterialCost + r.LaborCost + r.MiscExpenses
	}
	return r
}

func addBoardFeet(r *model.CalculationResults, foam model.FoamType, bdft float64) {
	if foam == model.FoamOpenCell {
		r.TotalOpenCellBdFt += bdft
		return
	}
	r.TotalClosedCellBdFt += bdft
}

// sets converts board feet into chemical sets rounded to two places. A
// non-positive yield yields zero sets.
func sets(bdft, yield float64) float64 {
	if yield <= 0 {
		return 0
	}
	return math.Round(bdft/yield*100) / 100
}

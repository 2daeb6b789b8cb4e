package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/foampro/foamsync/internal/model"
	"github.com/foampro/foamsync/internal/state"
)

// StartJob marks a work order as in progress in the field.
func (e *Engine) StartJob(id string) error {
	rec, _, err := e.find(id)
	if err != nil {
		return err
	}
	if rec.Status != model.StatusWorkOrder {
		return fmt.Errorf("%w: cannot start a %s job", ErrInvalidTransition, rec.Status)
	}
	if rec.ExecutionStatus == model.ExecutionInProgress {
		return nil
	}
	rec.ExecutionStatus = model.ExecutionInProgress
	e.store.Dispatch(state.ReplaceEstimate{Record: rec})
	e.log.WithField("estimate_id", id).Info("job started")
	return nil
}

// CompleteJob records what the crew actually used and closes the job in the
// field. The material ledger grows by one entry per consumed material.
func (e *Engine) CompleteJob(id string, actuals model.Actuals) (model.EstimateRecord, error) {
	rec, snap, err := e.find(id)
	if err != nil {
		return model.EstimateRecord{}, err
	}
	if rec.Status != model.StatusWorkOrder {
		return model.EstimateRecord{}, fmt.Errorf("%w: cannot complete a %s job", ErrInvalidTransition, rec.Status)
	}

	actuals = actuals.Clone()
	if actuals.CompletedBy == "" {
		actuals.CompletedBy = "Crew"
		if snap.Session != nil && snap.Session.Username != "" {
			actuals.CompletedBy = snap.Session.Username
		}
	}
	if actuals.CompletionDate == "" {
		actuals.CompletionDate = e.timestamp()
	}
	rec.Actuals = &actuals
	rec.ExecutionStatus = model.ExecutionCompleted

	e.store.Dispatch(state.Batch{
		state.ReplaceEstimate{Record: rec},
		state.AppendMaterialLogs{Entries: usageLogs(actuals, rec.Customer.Name, actuals.CompletedBy, e.today())},
	})

	log := e.log.WithField("estimate_id", id)
	log.WithField("labor_hours", actuals.LaborHours).Info("job completed")
	e.notifier.Success("Job Completed")

	e.background("complete_job", func(ctx context.Context, session model.Session) {
		if err := e.remote.CompleteJob(ctx, id, actuals, session.StoreHandle); err != nil {
			log.WithError(err).Error("completion sync failed")
			e.store.Dispatch(state.SetSyncStatus{Status: state.SyncError})
			e.notifier.Error("Completion saved locally, but server failed.")
		}
	})
	return rec, nil
}

// AttachPhoto uploads an image and links it to the job. Completion photos
// go with the actuals; anything else is a site photo.
func (e *Engine) AttachPhoto(ctx context.Context, id string, image []byte, filename string, kind model.ImageKind) (model.JobImage, error) {
	_, snap, err := e.find(id)
	if err != nil {
		return model.JobImage{}, err
	}
	if snap.Session == nil {
		return model.JobImage{}, ErrNoSession
	}

	url, err := e.remote.UploadImage(ctx, image, filename, snap.Session.StoreHandle, snap.Session.StorageHandle)
	if err != nil {
		e.log.WithError(err).WithField("estimate_id", id).Error("photo upload failed")
		e.notifier.Error("Photo upload failed.")
		return model.JobImage{}, err
	}
	if kind == "" {
		kind = model.ImageSiteCondition
	}
	img := model.JobImage{
		ID:         e.newID(),
		URL:        url,
		UploadedAt: e.timestamp(),
		UploadedBy: snap.Session.Username,
		Type:       kind,
	}

	// Re-read: the record may have changed during the upload.
	rec, _, err := e.find(id)
	if err != nil {
		return model.JobImage{}, err
	}
	if kind == model.ImageCompletion {
		actuals := model.Actuals{}
		if rec.Actuals != nil {
			actuals = rec.Actuals.Clone()
		}
		actuals.CompletionPhotos = append(actuals.CompletionPhotos, img)
		rec.Actuals = &actuals
	} else {
		rec.SitePhotos = append(rec.SitePhotos, img)
	}
	e.store.Dispatch(state.ReplaceEstimate{Record: rec})
	e.notifier.Success("Photo Uploaded")
	return img, nil
}

// LogTime records a crew time entry on the job's field log.
func (e *Engine) LogTime(ctx context.Context, id string, start, end time.Time) error {
	rec, snap, err := e.find(id)
	if err != nil {
		return err
	}
	if rec.WorkOrderSheetURL == "" {
		return fmt.Errorf("%w: %s", ErrNoFieldLog, id)
	}
	if !end.After(start) {
		return fmt.Errorf("time entry ends before it starts: %s to %s", start.Format(time.Kitchen), end.Format(time.Kitchen))
	}
	if snap.Session == nil {
		return ErrNoSession
	}

	if err := e.remote.LogCrewTime(ctx, rec.WorkOrderSheetURL, start, end, snap.Session.Username); err != nil {
		e.log.WithError(err).WithField("estimate_id", id).Error("time log failed")
		e.notifier.Error("Failed to log time.")
		return err
	}
	e.log.WithFields(logrus.Fields{
		"estimate_id": id,
		"hours":       end.Sub(start).Hours(),
	}).Info("crew time logged")
	e.notifier.Success("Time Logged")
	return nil
}

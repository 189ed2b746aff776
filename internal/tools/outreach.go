package tools

import (
	"context"

	"github.com/example/linkscout/internal/automation"
	"github.com/example/linkscout/internal/browser"
	"github.com/example/linkscout/internal/models"
)

// SendConnectionRequest sends a connection request to one profile. Prior
// success for the same URL short-circuits to already_sent without touching
// the browser.
func (t *Tools) SendConnectionRequest(ctx context.Context, profileURL, message string) (Outcome, error) {
	if out, err := t.precheck(ctx, models.ActionConnectionRequest); err != nil {
		return Outcome{}, err
	} else if out != nil {
		return *out, nil
	}

	existing, err := t.store.ActionByTargetURL(ctx, profileURL, models.ActionConnectionRequest)
	if err != nil {
		return Outcome{}, err
	}
	if existing != nil && existing.Status == models.StatusSuccess {
		return Outcome{
			Status:    StatusAlreadySent,
			TargetURL: profileURL,
			Message:   "connection request already sent to this profile",
		}, nil
	}

	action := &models.OutreachAction{
		ActionType: models.ActionConnectionRequest,
		TargetURL:  profileURL,
		Status:     models.StatusPending,
	}
	if message != "" {
		action.Message = &message
	}
	if err := t.store.CreateAction(ctx, action); err != nil {
		return Outcome{}, err
	}

	var result automation.Result
	if err := t.session.With(func(d browser.Driver) error {
		result = t.connect(ctx, d, profileURL, message)
		return nil
	}); err != nil {
		return Outcome{}, err
	}

	if err := t.settle(ctx, action.ID, models.ActionConnectionRequest, result); err != nil {
		return Outcome{}, err
	}
	return fromResult(result), nil
}

// SendBulkConnectionRequests processes a list of profiles sequentially with
// inter-action delays and batch pauses. Limits are re-checked per profile.
// When stopOnLimit is set, a quota hit or a detected rate limit ends the run.
func (t *Tools) SendBulkConnectionRequests(ctx context.Context, profileURLs []string, message string, stopOnLimit bool) (BulkResult, error) {
	br := BulkResult{Total: len(profileURLs)}

	for i, profileURL := range profileURLs {
		out, err := t.precheck(ctx, models.ActionConnectionRequest)
		if err != nil {
			return br, err
		}
		if out != nil {
			if out.Status == StatusPaused {
				br.Results = append(br.Results, Outcome{
					Status: StatusSkippedByOperator, TargetURL: profileURL, Message: "outreach paused"})
				br.Skipped++
				break
			}
			br.Results = append(br.Results, Outcome{
				Status: StatusSkippedByOperator, TargetURL: profileURL, Message: "daily limit reached"})
			br.Skipped++
			if stopOnLimit {
				break
			}
			continue
		}

		existing, err := t.store.ActionByTargetURL(ctx, profileURL, models.ActionConnectionRequest)
		if err != nil {
			return br, err
		}
		if existing != nil && existing.Status == models.StatusSuccess {
			br.Results = append(br.Results, Outcome{
				Status: StatusAlreadySent, TargetURL: profileURL,
				Message: "connection request already sent to this profile"})
			br.Skipped++
			continue
		}

		action := &models.OutreachAction{
			ActionType: models.ActionConnectionRequest,
			TargetURL:  profileURL,
			Status:     models.StatusPending,
		}
		if message != "" {
			m := message
			action.Message = &m
		}
		if err := t.store.CreateAction(ctx, action); err != nil {
			return br, err
		}

		var result automation.Result
		if err := t.session.With(func(d browser.Driver) error {
			result = t.connect(ctx, d, profileURL, message)
			return nil
		}); err != nil {
			return br, err
		}
		if err := t.settle(ctx, action.ID, models.ActionConnectionRequest, result); err != nil {
			return br, err
		}

		br.Results = append(br.Results, fromResult(result))
		switch {
		case result.Success():
			br.Successful++
		case result.Skipped():
			br.Skipped++
		case result.Status == automation.StatusRateLimited:
			if stopOnLimit {
				return br, nil
			}
		default:
			br.Failed++
		}

		if i < len(profileURLs)-1 {
			if _, err := t.limiter.WaitBetweenActions(ctx); err != nil {
				return br, err
			}
			if _, err := t.limiter.WaitForBatchPause(ctx); err != nil {
				return br, err
			}
		}
	}
	return br, nil
}

// FollowCompany follows one company page.
func (t *Tools) FollowCompany(ctx context.Context, companyURL string) (Outcome, error) {
	if out, err := t.precheck(ctx, models.ActionFollowCompany); err != nil {
		return Outcome{}, err
	} else if out != nil {
		return *out, nil
	}

	existing, err := t.store.ActionByTargetURL(ctx, companyURL, models.ActionFollowCompany)
	if err != nil {
		return Outcome{}, err
	}
	if existing != nil && existing.Status == models.StatusSuccess {
		return Outcome{
			Status:    StatusAlreadyFollowed,
			TargetURL: companyURL,
			Message:   "already following this company",
		}, nil
	}

	action := &models.OutreachAction{
		ActionType: models.ActionFollowCompany,
		TargetURL:  companyURL,
		Status:     models.StatusPending,
	}
	if err := t.store.CreateAction(ctx, action); err != nil {
		return Outcome{}, err
	}

	var result automation.Result
	if err := t.session.With(func(d browser.Driver) error {
		result = t.followCompany(ctx, d, companyURL)
		return nil
	}); err != nil {
		return Outcome{}, err
	}

	if err := t.settle(ctx, action.ID, models.ActionFollowCompany, result); err != nil {
		return Outcome{}, err
	}
	return fromResult(result), nil
}

// FollowBulkCompanies follows a list of companies sequentially with the same
// pacing and limit semantics as bulk connection requests.
func (t *Tools) FollowBulkCompanies(ctx context.Context, companyURLs []string, stopOnLimit bool) (BulkResult, error) {
	br := BulkResult{Total: len(companyURLs)}

	for i, companyURL := range companyURLs {
		out, err := t.precheck(ctx, models.ActionFollowCompany)
		if err != nil {
			return br, err
		}
		if out != nil {
			if out.Status == StatusPaused {
				br.Results = append(br.Results, Outcome{
					Status: StatusSkippedByOperator, TargetURL: companyURL, Message: "outreach paused"})
				br.Skipped++
				break
			}
			br.Results = append(br.Results, Outcome{
				Status: StatusSkippedByOperator, TargetURL: companyURL, Message: "daily limit reached"})
			br.Skipped++
			if stopOnLimit {
				break
			}
			continue
		}

		existing, err := t.store.ActionByTargetURL(ctx, companyURL, models.ActionFollowCompany)
		if err != nil {
			return br, err
		}
		if existing != nil && existing.Status == models.StatusSuccess {
			br.Results = append(br.Results, Outcome{
				Status: StatusAlreadyFollowed, TargetURL: companyURL,
				Message: "already following this company"})
			br.Skipped++
			continue
		}

		action := &models.OutreachAction{
			ActionType: models.ActionFollowCompany,
			TargetURL:  companyURL,
			Status:     models.StatusPending,
		}
		if err := t.store.CreateAction(ctx, action); err != nil {
			return br, err
		}

		var result automation.Result
		if err := t.session.With(func(d browser.Driver) error {
			result = t.followCompany(ctx, d, companyURL)
			return nil
		}); err != nil {
			return br, err
		}
		if err := t.settle(ctx, action.ID, models.ActionFollowCompany, result); err != nil {
			return br, err
		}

		br.Results = append(br.Results, fromResult(result))
		switch {
		case result.Success():
			br.Successful++
		case result.Skipped():
			br.Skipped++
		case result.Status == automation.StatusRateLimited:
			if stopOnLimit {
				return br, nil
			}
		default:
			br.Failed++
		}

		if i < len(companyURLs)-1 {
			if _, err := t.limiter.WaitBetweenActions(ctx); err != nil {
				return br, err
			}
			if _, err := t.limiter.WaitForBatchPause(ctx); err != nil {
				return br, err
			}
		}
	}
	return br, nil
}

// FollowPerson follows a profile directly. Useful for profiles that accept
// followers but gate connection requests.
func (t *Tools) FollowPerson(ctx context.Context, profileURL string) (Outcome, error) {
	if out, err := t.precheck(ctx, models.ActionFollowPerson); err != nil {
		return Outcome{}, err
	} else if out != nil {
		return *out, nil
	}

	existing, err := t.store.ActionByTargetURL(ctx, profileURL, models.ActionFollowPerson)
	if err != nil {
		return Outcome{}, err
	}
	if existing != nil && existing.Status == models.StatusSuccess {
		return Outcome{
			Status:    StatusAlreadyFollowed,
			TargetURL: profileURL,
			Message:   "already following this profile",
		}, nil
	}

	action := &models.OutreachAction{
		ActionType: models.ActionFollowPerson,
		TargetURL:  profileURL,
		Status:     models.StatusPending,
	}
	if err := t.store.CreateAction(ctx, action); err != nil {
		return Outcome{}, err
	}

	var result automation.Result
	if err := t.session.With(func(d browser.Driver) error {
		result = t.followPerson(ctx, d, profileURL)
		return nil
	}); err != nil {
		return Outcome{}, err
	}

	if err := t.settle(ctx, action.ID, models.ActionFollowPerson, result); err != nil {
		return Outcome{}, err
	}
	return fromResult(result), nil
}

// PauseState is the response of the pause and resume operations.
type PauseState struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Paused  bool   `json:"paused"`
}

// PauseOutreach flips the persisted kill switch on. Every outreach
// operation refuses to run until resumed.
func (t *Tools) PauseOutreach(ctx context.Context) (PauseState, error) {
	if err := t.limiter.Pause(ctx); err != nil {
		return PauseState{}, err
	}
	return PauseState{Status: "success", Message: "outreach automation paused", Paused: true}, nil
}

// ResumeOutreach clears the kill switch and resets backoff.
func (t *Tools) ResumeOutreach(ctx context.Context) (PauseState, error) {
	if err := t.limiter.Resume(ctx); err != nil {
		return PauseState{}, err
	}
	return PauseState{Status: "success", Message: "outreach automation resumed", Paused: false}, nil
}

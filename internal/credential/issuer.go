package credential

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"coursegate/internal/platform/config"
	"coursegate/internal/tracking"
	dErrors "coursegate/pkg/domain-errors"
	"coursegate/pkg/platform/sentinel"
)

const defaultTemplateBody = `<html><body>
<h1>Certificate of Completion</h1>
<p>This certifies that {{name}} has successfully completed {{course}}
with a score of {{score}}% on {{date}}.</p>
<p>Verification code: {{code}}</p>
</body></html>`

var defaultPlaceholders = []string{"name", "course", "score", "date", "code"}

// Issuer runs the credential state machine per (subject, course):
// NoCredential -> (assessment passed) -> Eligible -> Issued.
type Issuer struct {
	store     Store
	templates TemplateStore
	tracker   tracking.Tracker
	logger    *slog.Logger
	templateG singleflight.Group
	now       func() time.Time
}

func NewIssuer(store Store, templates TemplateStore, tracker tracking.Tracker, logger *slog.Logger) *Issuer {
	return &Issuer{
		store:     store,
		templates: templates,
		tracker:   tracker,
		logger:    logger,
		now:       time.Now,
	}
}

// Issue conditionally issues a certificate. Storage-level uniqueness on active
// (subject, course) closes the check-then-insert race: a concurrent issuance
// that loses the insert reads back the winner and reports AlreadyIssued with
// its id, so callers always see exactly one credential.
func (i *Issuer) Issue(ctx context.Context, req IssueRequest) (IssueResult, error) {
	if req.Score < config.PassingScore {
		return IssueResult{Status: StatusNotEligible}, nil
	}

	degraded := false
	if err := i.tracker.RecordCompletion(ctx, req.SubjectID, req.CourseID, req.Score); err != nil {
		i.logger.WarnContext(ctx, "completion tracking update failed",
			"subject_id", req.SubjectID,
			"course_id", req.CourseID,
			"error", err.Error(),
		)
		degraded = true
	}

	if existing, err := i.store.FindActive(ctx, req.SubjectID, req.CourseID); err == nil {
		return IssueResult{
			Status:           StatusAlreadyIssued,
			CredentialID:     existing.ID,
			VerificationCode: existing.VerificationCode,
			Degraded:         degraded,
		}, nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return IssueResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing credential").WithDetails("credential")
	}

	template, err := i.ensureDefaultTemplate(ctx)
	if err != nil {
		return IssueResult{}, err
	}

	now := i.now()
	cred := Credential{
		ID:               uuid.NewString(),
		SubjectID:        req.SubjectID,
		CourseID:         req.CourseID,
		HolderName:       req.HolderName,
		CourseName:       req.CourseName,
		Score:            req.Score,
		VerificationCode: verificationCode(now),
		TemplateID:       template.ID,
		IssuedAt:         now,
		Active:           true,
	}

	if err := i.store.Insert(ctx, cred); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			winner, ferr := i.store.FindActive(ctx, req.SubjectID, req.CourseID)
			if ferr != nil {
				return IssueResult{}, dErrors.Wrap(ferr, dErrors.CodeInternal, "failed to load issued credential").WithDetails("credential")
			}
			return IssueResult{
				Status:           StatusAlreadyIssued,
				CredentialID:     winner.ID,
				VerificationCode: winner.VerificationCode,
				Degraded:         degraded,
			}, nil
		}
		return IssueResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue credential").WithDetails("credential")
	}

	return IssueResult{
		Status:           StatusIssued,
		CredentialID:     cred.ID,
		VerificationCode: cred.VerificationCode,
		Degraded:         degraded,
	}, nil
}

// ensureDefaultTemplate gets-or-creates the default certificate template.
// Singleflight collapses concurrent creations in-process; the store's
// uniqueness guarantee backstops creations racing across processes.
func (i *Issuer) ensureDefaultTemplate(ctx context.Context) (Template, error) {
	v, err, _ := i.templateG.Do("default", func() (any, error) {
		if tpl, err := i.templates.FindDefault(ctx); err == nil {
			return tpl, nil
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return Template{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credential template").WithDetails("credential")
		}

		tpl := Template{
			ID:           uuid.NewString(),
			Name:         "Default completion certificate",
			BodyHTML:     defaultTemplateBody,
			Placeholders: defaultPlaceholders,
			IsDefault:    true,
			Active:       true,
		}
		if err := i.templates.Insert(ctx, tpl); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return i.fetchDefaultAfterConflict(ctx)
			}
			return Template{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create credential template").WithDetails("credential")
		}
		return tpl, nil
	})
	if err != nil {
		return Template{}, err
	}
	return v.(Template), nil
}

func (i *Issuer) fetchDefaultAfterConflict(ctx context.Context) (Template, error) {
	tpl, err := i.templates.FindDefault(ctx)
	if err != nil {
		return Template{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credential template").WithDetails("credential")
	}
	return tpl, nil
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// verificationCode builds the human-checkable code embedded in certificates.
// Format: CERT-<unix millis>-<6 random base36 chars>. Not guaranteed unique;
// the collision probability is treated as negligible, nothing depends on
// uniqueness.
func verificationCode(now time.Time) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is unrecoverable for this process anyway
		panic(err)
	}
	for idx, b := range buf {
		buf[idx] = base36[int(b)%len(base36)]
	}
	return fmt.Sprintf("CERT-%d-%s", now.UnixMilli(), buf)
}

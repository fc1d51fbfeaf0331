package credential

import "context"

// Store persists credentials. Insert must enforce at most one active
// credential per (subject, course) and return sentinel.ErrConflict when a
// concurrent issuance won the race; the issuer translates that conflict into
// StatusAlreadyIssued. In PostgreSQL the guarantee is a partial unique index,
// so no cross-request coordination is needed.
type Store interface {
	Insert(ctx context.Context, cred Credential) error
	FindActive(ctx context.Context, subjectID, courseID string) (Credential, error)
	Deactivate(ctx context.Context, credentialID string) error
}

// TemplateStore persists certificate templates.
type TemplateStore interface {
	FindDefault(ctx context.Context) (Template, error)
	Insert(ctx context.Context, tpl Template) error
}

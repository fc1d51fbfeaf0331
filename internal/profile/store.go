package profile

import "context"

// Store persists profiles. Ensure carries the whole get-or-create contract so
// the atomicity lives with the storage engine (a stored procedure in
// PostgreSQL), not in orchestration code:
//
//   - no row under subjectID and none matching email: create one
//   - row exists under subjectID: fill only empty fields (first-write-wins)
//   - no row under subjectID but one matches email: adopt it (re-key), never
//     create a duplicate
type Store interface {
	Ensure(ctx context.Context, subjectID, displayName, email string) (Profile, error)
	FindBySubject(ctx context.Context, subjectID string) (Profile, error)
}

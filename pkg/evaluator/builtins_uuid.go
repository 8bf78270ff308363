package evaluator

import (
	"context"

	"github.com/google/uuid"
)

// fnUUID is a domain extension beyond the reference function library:
// $uuid() returns a random (v4) UUID string, for templates that need to
// stamp generated identifiers without round-tripping through $eval or a
// bound host function.
func fnUUID(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	return uuid.NewString(), nil
}

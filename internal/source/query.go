package source

import (
	"context"

	"github.com/koustreak/pmysql/internal/errs"
)

// LoadQuery picks the query text from exactly one of: the literal query
// option, a query file, or a single positional argument.
func (o *Opener) LoadQuery(ctx context.Context, literal, file string, args []string) (string, error) {
	switch {
	case file != "" && (literal != "" || len(args) > 0):
		return "", errs.New(errs.ErrKindInvalidInput, "both query and query file provided, they are mutually exclusive")
	case len(args) > 1 || (literal != "" && len(args) > 0):
		return "", errs.New(errs.ErrKindInvalidInput, "multiple query arguments provided, use a ; separated list for multiple queries")
	case file != "":
		q, err := o.ReadAll(ctx, file)
		if err != nil {
			return "", err
		}
		if q == "" {
			return "", errs.New(errs.ErrKindInvalidInput, "query file "+file+" is empty")
		}
		return q, nil
	case literal != "":
		return literal, nil
	case len(args) == 1 && args[0] != "":
		return args[0], nil
	}
	return "", errs.New(errs.ErrKindInvalidInput, "need a query")
}

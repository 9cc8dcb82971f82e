package pipeline

import (
	stderrors "errors"

	"github.com/matzehuels/tromp/pkg/errors"
	"github.com/matzehuels/tromp/pkg/lambda"
)

// Parse reads opts.Expression in opts.Notation. Syntax errors carry
// INVALID_EXPRESSION; terms larger than opts.MaxTermSize carry
// EXPRESSION_TOO_LARGE. Free variables are not rejected here because the
// tree view can draw open terms.
func Parse(opts Options) (lambda.Term, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, err
	}

	t, err := lambda.Parse(opts.Expression, opts.NotationValue())
	if err != nil {
		var pe *lambda.ParseError
		if stderrors.As(err, &pe) {
			return nil, errors.Wrap(errors.ErrCodeInvalidExpression, err, "invalid %s expression", opts.Notation)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse")
	}

	if size := lambda.Size(t); size > opts.MaxTermSize {
		return nil, errors.New(errors.ErrCodeExpressionTooLarge,
			"term has %d nodes (max %d)", size, opts.MaxTermSize)
	}
	return t, nil
}

// CanonicalHash identifies a term independently of how it was written:
// classic and de Bruijn spellings of the same term hash the same.
func CanonicalHash(t lambda.Term) string {
	return hashString(lambda.Format(t, lambda.DeBruijn))
}

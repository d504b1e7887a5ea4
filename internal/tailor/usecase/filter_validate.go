package usecase

import (
	"github.com/samber/lo"
	"github.com/shandysiswandi/tailor/internal/pkg/goerror"
	"github.com/shandysiswandi/tailor/internal/tailor/entity"
)

var (
	errMaxFilters          = goerror.NewBusiness("Max amount of filters reached", goerror.CodeTooManyRequest)
	errFilterExists        = goerror.NewBusiness("Filter already exists", goerror.CodeConflict)
	errUpdatedFilterExists = goerror.NewBusiness("The updated Filter already exists", goerror.CodeConflict)
	errFilterNotFound      = goerror.NewBusiness("Filter not found", goerror.CodeNotFound)
)

func validateNewFilter(user entity.User, candidate entity.Filter, maxFilters int) error {
	if len(user.Filters) >= maxFilters {
		return errMaxFilters
	}

	if lo.ContainsBy(user.OtherFilters(candidate.ID), candidate.Equal) {
		return errFilterExists
	}

	return nil
}

// validateUpdatedFilter checks an update of original into candidate. A rename
// that keeps every criterion never conflicts with a sibling.
func validateUpdatedFilter(user entity.User, original, candidate entity.Filter) error {
	if original.SameCriteria(candidate) {
		return nil
	}

	if lo.ContainsBy(user.OtherFilters(candidate.ID), candidate.Equal) {
		return errUpdatedFilterExists
	}

	return nil
}

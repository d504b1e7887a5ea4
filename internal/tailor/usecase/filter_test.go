package usecase

import (
	"testing"

	"github.com/shandysiswandi/tailor/internal/pkg/goerror"
	"github.com/shandysiswandi/tailor/internal/pkg/valueobject"
	"github.com/shandysiswandi/tailor/internal/tailor/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFilter(id, name string, minIRR float64) entity.Filter {
	return entity.Filter{ID: id, Name: name, MinIRR: ptr(minIRR), CreditTypes: []string{"factoring"}}
}

func TestValidateNewFilter(t *testing.T) {
	tests := []struct {
		name      string
		existing  []entity.Filter
		candidate entity.Filter
		max       int
		want      error
	}{
		{name: "first", candidate: sampleFilter("f1", "a", 10), max: 2},
		{
			name:      "limit",
			existing:  []entity.Filter{sampleFilter("f1", "a", 10), sampleFilter("f2", "b", 11)},
			candidate: sampleFilter("f3", "c", 12),
			max:       2,
			want:      errMaxFilters,
		},
		{
			name:      "limit checked before duplicate",
			existing:  []entity.Filter{sampleFilter("f1", "a", 10)},
			candidate: sampleFilter("f2", "a", 10),
			max:       1,
			want:      errMaxFilters,
		},
		{
			name:      "duplicate",
			existing:  []entity.Filter{sampleFilter("f1", "a", 10)},
			candidate: sampleFilter("f2", "a", 10),
			max:       3,
			want:      errFilterExists,
		},
		{
			name:      "same criteria, different name",
			existing:  []entity.Filter{sampleFilter("f1", "a", 10)},
			candidate: sampleFilter("f2", "b", 10),
			max:       3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := withFilters(baseUser(), tt.existing...)
			assert.Equal(t, tt.want, validateNewFilter(user, tt.candidate, tt.max))
		})
	}
}

func TestValidateUpdatedFilter_RenameSkipsDuplicateCheck(t *testing.T) {
	// Arrange
	original := sampleFilter("f1", "a", 10)
	user := withFilters(baseUser(), original, sampleFilter("f2", "new", 10))
	renamed := original
	renamed.Name = "new"

	// Act
	err := validateUpdatedFilter(user, original, renamed)

	// Assert
	assert.NoError(t, err)

	changed := original
	changed.MinIRR = ptr(10.0)
	changed.Name = "b"
	user = withFilters(baseUser(), original, sampleFilter("f2", "b", 10))
	assert.NoError(t, validateUpdatedFilter(user, original, changed))

	changed.MinIRR = ptr(20.0)
	user = withFilters(baseUser(), original, sampleFilter("f2", "b", 20))
	assert.Equal(t, errUpdatedFilterExists, validateUpdatedFilter(user, original, changed))
}

func TestUsecase_FilterCreate(t *testing.T) {
	tests := []struct {
		name     string
		existing []entity.Filter
		payload  valueobject.JSONMap
		wantCode goerror.Code
		wantMsg  string
	}{
		{
			name:    "ok",
			payload: valueobject.JSONMap{"name": "short", "max_duration": 30, "credit_types": []any{"b", "a", "b"}},
		},
		{
			name:     "limit",
			existing: []entity.Filter{sampleFilter("f1", "a", 10), sampleFilter("f2", "b", 11)},
			payload:  valueobject.JSONMap{"name": "c"},
			wantCode: goerror.CodeTooManyRequest,
			wantMsg:  "Max amount of filters reached",
		},
		{
			name:     "duplicate",
			existing: []entity.Filter{sampleFilter("f1", "a", 10)},
			payload:  valueobject.JSONMap{"name": "a", "min_irr": 10, "credit_types": []any{"factoring"}},
			wantCode: goerror.CodeConflict,
			wantMsg:  "Filter already exists",
		},
		{
			name:     "negative",
			payload:  valueobject.JSONMap{"min_amount": -1},
			wantCode: goerror.CodeInvalidInput,
		},
		{
			name:     "inverted range",
			payload:  valueobject.JSONMap{"min_duration": 60, "max_duration": 30},
			wantCode: goerror.CodeInvalidInput,
		},
		{
			name:     "unknown field",
			payload:  valueobject.JSONMap{"colour": "blue"},
			wantCode: goerror.CodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t, withFilters(baseUser(), tt.existing...))

			// Act
			got, err := f.uc.FilterCreate(asUser("u1"), FilterCreateInput{Payload: tt.payload})

			// Assert
			if tt.wantCode != goerror.CodeInternal {
				code, msg := errMessage(t, err)
				assert.Equal(t, tt.wantCode, code)
				if tt.wantMsg != "" {
					assert.Equal(t, tt.wantMsg, msg)
				}
				assert.Empty(t, f.mq.sent)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "id-1", got.ID)
			assert.Equal(t, []string{"a", "b"}, got.CreditTypes)
			assert.Equal(t, ptr(30), got.MaxDuration)
			assert.True(t, f.db.stored("u1").Filters["id-1"].Equal(*got))
			assert.Equal(t, []entity.FieldGroup{entity.GroupFilters}, f.mq.groups())
		})
	}
}

func TestUsecase_FilterUpdate(t *testing.T) {
	existing := []entity.Filter{sampleFilter("f1", "a", 10), sampleFilter("f2", "b", 20)}

	tests := []struct {
		name     string
		id       string
		patch    valueobject.JSONMap
		wantCode goerror.Code
		wantMsg  string
		check    func(t *testing.T, f entity.Filter)
	}{
		{
			name:  "rename",
			id:    "f1",
			patch: valueobject.JSONMap{"name": "new"},
			check: func(t *testing.T, f entity.Filter) {
				assert.Equal(t, "new", f.Name)
				assert.Equal(t, ptr(10.0), f.MinIRR)
			},
		},
		{
			name:  "clear criterion",
			id:    "f1",
			patch: valueobject.JSONMap{"min_irr": nil},
			check: func(t *testing.T, f entity.Filter) {
				assert.Nil(t, f.MinIRR)
			},
		},
		{
			name:  "list replaced whole",
			id:    "f1",
			patch: valueobject.JSONMap{"credit_types": []any{"leasing"}},
			check: func(t *testing.T, f entity.Filter) {
				assert.Equal(t, []string{"leasing"}, f.CreditTypes)
			},
		},
		{
			name:     "nothing to update",
			id:       "f1",
			patch:    valueobject.JSONMap{"name": "a"},
			wantCode: goerror.CodeInvalidFormat,
			wantMsg:  "Nothing to update",
		},
		{
			name:     "becomes duplicate",
			id:       "f1",
			patch:    valueobject.JSONMap{"name": "b", "min_irr": 20},
			wantCode: goerror.CodeConflict,
			wantMsg:  "The updated Filter already exists",
		},
		{
			name:     "missing",
			id:       "nope",
			patch:    valueobject.JSONMap{"name": "x"},
			wantCode: goerror.CodeNotFound,
		},
		{
			name:     "invalid",
			id:       "f1",
			patch:    valueobject.JSONMap{"min_score": -2},
			wantCode: goerror.CodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t, withFilters(baseUser(), existing...))

			// Act
			got, err := f.uc.FilterUpdate(asUser("u1"), FilterUpdateInput{ID: tt.id, Patch: tt.patch})

			// Assert
			if tt.wantCode != goerror.CodeInternal {
				code, msg := errMessage(t, err)
				assert.Equal(t, tt.wantCode, code)
				if tt.wantMsg != "" {
					assert.Equal(t, tt.wantMsg, msg)
				}
				assert.Zero(t, f.db.puts)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.id, got.ID)
			tt.check(t, *got)
			assert.True(t, f.db.stored("u1").Filters[tt.id].Equal(*got))
		})
	}
}

func TestUsecase_FilterGetListDelete(t *testing.T) {
	f := newFixture(t, withFilters(baseUser(), sampleFilter("f1", "a", 10)))
	ctx := asUser("u1")

	list, err := f.uc.FilterList(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	got, err := f.uc.FilterGet(ctx, FilterGetInput{ID: "f1"})
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)

	_, err = f.uc.FilterGet(ctx, FilterGetInput{ID: "x"})
	assert.Equal(t, errFilterNotFound, err)

	require.NoError(t, f.uc.FilterDelete(ctx, FilterDeleteInput{ID: "f1"}))
	assert.Empty(t, f.db.stored("u1").Filters)
	assert.Equal(t, errFilterNotFound, f.uc.FilterDelete(ctx, FilterDeleteInput{ID: "f1"}))
	assert.Equal(t, []entity.FieldGroup{entity.GroupFilters}, f.mq.groups())
}

func TestMerge_Idempotent(t *testing.T) {
	x, err := valueobject.FromStruct(sampleFilter("f1", "a", 10))
	require.NoError(t, err)
	p := valueobject.JSONMap{"name": "b", "credit_types": []any{"x"}}

	assert.Equal(t, x, x.Merge(valueobject.JSONMap{}))
	once := x.Merge(p)
	assert.Equal(t, once, x.Merge(once))
	assert.Equal(t, once, once.Merge(p))
}

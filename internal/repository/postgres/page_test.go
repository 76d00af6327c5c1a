package postgres

import (
	"reflect"
	"testing"

	"sift-api/internal/domain"
)

func TestBuildPageFilter(t *testing.T) {
	tests := []struct {
		name      string
		filter    domain.PageFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "no filter",
			filter:    domain.PageFilter{},
			wantWhere: "is_archived = FALSE",
		},
		{
			name:      "query",
			filter:    domain.PageFilter{Query: " pasta "},
			wantWhere: "is_archived = FALSE AND (title ILIKE $1 OR summary ILIKE $1)",
			wantArgs:  []any{"%pasta%"},
		},
		{
			name:      "tag and category",
			filter:    domain.PageFilter{Tag: "baking", Category: "Cooking"},
			wantWhere: "is_archived = FALSE AND EXISTS (SELECT 1 FROM unnest(tags) AS t WHERE lower(t) = lower($1)) AND (metadata->>'category' = $2 OR $2 = ANY(tags))",
			wantArgs:  []any{"baking", "Cooking"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildPageFilter(tt.filter)
			if where != tt.wantWhere {
				t.Errorf("where = %q\nwant    %q", where, tt.wantWhere)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike(`50%_off\`); got != `50\%\_off\\` {
		t.Errorf("escapeLike() = %q", got)
	}
}

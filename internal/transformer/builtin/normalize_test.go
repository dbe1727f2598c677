package builtin

import (
	"reflect"
	"testing"

	"worldpop/internal/table"
)

/*
TestNormalizeApply_TableDriven verifies the text normalization pass:

  - Trims leading/trailing whitespace of text cells.
  - Replaces NO-BREAK SPACE with an ASCII space before trimming.
  - Maps the sentinel tokens to missing, and so does an all-blank cell.
  - Leaves numbers and missing values unchanged.
*/
func TestNormalizeApply_TableDriven(t *testing.T) {
	sentinels := []string{"nan", "N.A.", "N.A"}

	tests := []struct {
		name string
		in   table.Record
		want table.Record
	}{
		{
			name: "no_strings_no_change",
			in:   table.Record{"a": table.Num(1), "b": table.Null()},
			want: table.Record{"a": table.Num(1), "b": table.Null()},
		},
		{
			name: "simple_trim_spaces",
			in:   table.Record{"a": table.Str(" Monaco "), "b": table.Str("\tChad\n")},
			want: table.Record{"a": table.Str("Monaco"), "b": table.Str("Chad")},
		},
		{
			name: "nbsp_replaced_and_trimmed",
			in:   table.Record{"a": table.Str(" " + nbspace + "Peru" + nbspace + " ")},
			want: table.Record{"a": table.Str("Peru")},
		},
		{
			name: "nbsp_internal_becomes_space",
			in:   table.Record{"a": table.Str("Costa" + nbspace + "Rica")},
			want: table.Record{"a": table.Str("Costa Rica")},
		},
		{
			name: "sentinels_become_missing",
			in: table.Record{
				"a": table.Str("nan"),
				"b": table.Str(" N.A. "),
				"c": table.Str("N.A"),
				"d": table.Str("NaN"),
			},
			want: table.Record{
				"a": table.Null(),
				"b": table.Null(),
				"c": table.Null(),
				"d": table.Str("NaN"),
			},
		},
		{
			name: "blank_becomes_missing",
			in:   table.Record{"a": table.Str("   ")},
			want: table.Record{"a": table.Null()},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tb := &table.Table{Columns: []string{"a", "b", "c", "d"}, Rows: []table.Record{tc.in}}

			out := Normalize{Missing: sentinels}.Apply(tb)

			if !reflect.DeepEqual(out.Rows[0], tc.want) {
				t.Fatalf("Normalize.Apply() mismatch:\n got: %#v\nwant: %#v", out.Rows[0], tc.want)
			}
			if out != tb {
				t.Fatalf("Normalize.Apply did not operate in place")
			}
		})
	}
}

func TestNormalizeApply_Nil(t *testing.T) {
	if got := (Normalize{}).Apply(nil); got != nil {
		t.Fatalf("Normalize.Apply(nil) = %#v; want nil", got)
	}
}

/*
TestHasEdgeSpace verifies that HasEdgeSpace detects leading/trailing ASCII
whitespace and ignores interior-only whitespace.
*/
func TestHasEdgeSpace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{in: "", want: false},
		{in: "foo", want: false},
		{in: " foo", want: true},
		{in: "foo ", want: true},
		{in: "f oo", want: false},
		{in: "\tfoo", want: true},
		{in: "foo\n", want: true},
		{in: "\rfoo", want: true},
		{in: " ", want: true},
	}

	for _, tt := range tests {
		if got := HasEdgeSpace(tt.in); got != tt.want {
			t.Fatalf("HasEdgeSpace(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

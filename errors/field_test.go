package errors

import (
	"strings"
	"testing"
)

func TestFieldErrors(t *testing.T) {
	var (
		badOwner    = Field("Owner", ErrInput, "owner")
		lowBalance  = Field("Balance", ErrAmount, "balance %d", 3)
		emptyClass  = Field("Class", ErrEmpty, "")
		leg         = Field("Legs.0", Append(badOwner, Append(emptyClass, ErrState)), "offering leg")
		renamed     = Field("Class", emptyClass, "outer")
		flatAccount = Append(badOwner, lowBalance)
		humanOwner  = Field("Owner", ErrHuman, "")
	)

	cases := map[string]struct {
		err   error
		field string
		want  []error
	}{
		"nil": {
			err:   nil,
			field: "Owner",
		},
		"plain error has no fields": {
			err:   ErrUnauthorized,
			field: "Owner",
		},
		"direct match": {
			err:   badOwner,
			field: "Owner",
			want:  []error{badOwner},
		},
		"other field": {
			err:   lowBalance,
			field: "Owner",
		},
		"collection": {
			err:   flatAccount,
			field: "Balance",
			want:  []error{lowBalance},
		},
		"outer field is returned whole": {
			err:   leg,
			field: "Legs.0",
			want:  []error{leg},
		},
		"nested field inside a collection": {
			err:   Wrap(Wrap(leg, "first"), "second"),
			field: "Class",
			want:  []error{emptyClass},
		},
		"same field wrapped twice returns the outer one": {
			err:   renamed,
			field: "Class",
			want:  []error{renamed},
		},
		"results keep the collection order": {
			err:   Wrap(Append(Wrap(lowBalance, "a"), Wrap(badOwner, "b"), Wrap(humanOwner, "c")), "outer"),
			field: "Owner",
			want:  []error{badOwner, humanOwner},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := FieldErrors(tc.err, tc.field)
			if len(tc.want) != len(got) {
				t.Fatalf("want %d errors, got %d: %v", len(tc.want), len(got), got)
			}
			for i := range got {
				if got[i].Error() != tc.want[i].Error() {
					t.Fatalf("error %d: want %q, got %q", i, tc.want[i], got[i])
				}
			}
		})
	}
}

func TestFieldNilAndFormat(t *testing.T) {
	if err := Field("Owner", nil, "ignored"); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
	if err := AppendField(nil, "Owner", nil); err != nil {
		t.Fatalf("want nil, got %v", err)
	}

	err := Field("Balance", ErrAmount, "need %d", 5)
	if !ErrAmount.Is(err) {
		t.Fatal("field error must keep its cause")
	}
	if !strings.HasPrefix(err.Error(), `field "Balance": need 5: `) {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

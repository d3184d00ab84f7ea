package validator

import (
	"testing"

	"daily-report-go/internal/types"
)

func complete(calls, kpPlus, kp, rejections, inadequate string) types.FieldSet {
	return types.FieldSet{CallsCount: calls, KPPlus: kpPlus, KP: kp, Rejections: rejections, Inadequate: inadequate}
}

func TestComputeVerdictScenarios(t *testing.T) {
	ok, invalid, warning := types.StatusOk, types.StatusInvalid, types.StatusWarning
	tests := []struct {
		name   string
		fs     types.FieldSet
		valid  bool
		status map[types.Field]types.FieldStatus
	}{
		{
			name:  "valid report",
			fs:    complete("10", "1", "1", "0", "0"),
			valid: true,
			status: map[types.Field]types.FieldStatus{
				types.FieldCalls: ok, types.FieldKPPlus: ok, types.FieldKP: ok, types.FieldRejections: ok, types.FieldInadequate: ok,
			},
		},
		{
			name:   "zero calls",
			fs:     complete("0", "0", "0", "0", "0"),
			status: map[types.Field]types.FieldStatus{types.FieldCalls: warning, types.FieldKPPlus: ok, types.FieldKP: ok},
		},
		{
			name:   "zero calls skips overflow rule",
			fs:     complete("0", "4", "2", "0", "0"),
			status: map[types.Field]types.FieldStatus{types.FieldCalls: warning, types.FieldKPPlus: ok, types.FieldKP: ok},
		},
		{
			name:   "resultative above calls",
			fs:     complete("5", "3", "4", "0", "0"),
			status: map[types.Field]types.FieldStatus{types.FieldCalls: ok, types.FieldKPPlus: warning, types.FieldKP: warning},
		},
		{
			name:   "resultative equal to calls",
			fs:     complete("5", "3", "2", "0", "0"),
			valid:  true,
			status: map[types.Field]types.FieldStatus{types.FieldKPPlus: ok, types.FieldKP: ok},
		},
		{
			name:   "empty field",
			fs:     complete("10", "1", "1", "", "0"),
			status: map[types.Field]types.FieldStatus{types.FieldRejections: invalid, types.FieldCalls: ok},
		},
		{
			name:   "negative field",
			fs:     complete("10", "1", "1", "0", "-1"),
			status: map[types.Field]types.FieldStatus{types.FieldInadequate: invalid},
		},
		{
			name:   "negative calls is invalid not warning",
			fs:     complete("-3", "0", "0", "0", "0"),
			status: map[types.Field]types.FieldStatus{types.FieldCalls: invalid},
		},
		{
			name:   "decimal is not an integer",
			fs:     complete("10", "1.5", "1", "0", "0"),
			status: map[types.Field]types.FieldStatus{types.FieldKPPlus: invalid, types.FieldKP: ok},
		},
		{
			name:   "invalid keeps priority over overflow",
			fs:     complete("5", "9", "x", "0", "0"),
			status: map[types.Field]types.FieldStatus{types.FieldKPPlus: warning, types.FieldKP: invalid},
		},
		{
			name:   "out of range number",
			fs:     complete("99999999999999999999999", "0", "0", "0", "0"),
			status: map[types.Field]types.FieldStatus{types.FieldCalls: invalid},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ComputeVerdict(tt.fs)
			if v.FormValid != tt.valid {
				t.Errorf("FormValid = %v, want %v", v.FormValid, tt.valid)
			}
			for f, want := range tt.status {
				if got := v.Status(f); got != want {
					t.Errorf("status[%s] = %s, want %s", f, got, want)
				}
			}
		})
	}
}

func TestAnyEmptyOrNegativeFieldIsInvalid(t *testing.T) {
	base := complete("10", "1", "1", "0", "0")
	for _, f := range types.Fields {
		for _, raw := range []string{"", "-2", "abc"} {
			v := ComputeVerdict(base.With(f, raw))
			if v.FormValid {
				t.Errorf("%s=%q: form valid", f, raw)
			}
			if got := v.Status(f); got != types.StatusInvalid {
				t.Errorf("%s=%q: status = %s, want invalid", f, raw, got)
			}
		}
	}
}

func TestComputeVerdictIsPure(t *testing.T) {
	fs := complete("5", "3", "4", "0", "0")
	a, b := ComputeVerdict(fs), ComputeVerdict(fs)
	if a.FormValid != b.FormValid || len(a.FieldStatus) != len(b.FieldStatus) {
		t.Fatal("verdicts differ")
	}
	for f, s := range a.FieldStatus {
		if b.FieldStatus[f] != s {
			t.Errorf("status[%s]: %s vs %s", f, s, b.FieldStatus[f])
		}
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		fs   types.FieldSet
		want string
	}{
		{complete("10", "1", "1", "0", "0"), ""},
		{complete("ten", "1", "1", "0", "0"), MsgInvalidNumber},
		{complete("10", "-1", "1", "0", "0"), MsgNegative},
		{complete("0", "0", "0", "0", "0"), MsgZeroCalls},
		{complete("5", "3", "4", "0", "0"), MsgOverflow},
	}
	for _, tt := range tests {
		if got := Message(tt.fs, ComputeVerdict(tt.fs)); got != tt.want {
			t.Errorf("Message(%+v) = %q, want %q", tt.fs, got, tt.want)
		}
	}
}

func TestExceedsDoesNotOverflow(t *testing.T) {
	if !exceeds(int(^uint(0)>>1), 1, 10) {
		t.Error("max int plus one should exceed")
	}
}

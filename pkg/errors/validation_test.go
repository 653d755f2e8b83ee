package errors

import "testing"

func TestValidateLabels(t *testing.T) {
	tests := []struct {
		n       int
		wantErr bool
	}{
		{n: 1}, {n: 3}, {n: MaxLabels},
		{n: 0, wantErr: true}, {n: -2, wantErr: true}, {n: MaxLabels + 1, wantErr: true},
	}
	for _, tt := range tests {
		err := ValidateLabels(tt.n)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateLabels(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeInvalidInput) {
			t.Errorf("ValidateLabels(%d) code = %q", tt.n, GetCode(err))
		}
	}
}

func TestValidateSize(t *testing.T) {
	if err := ValidateSize(1); err != nil {
		t.Errorf("ValidateSize(1) = %v", err)
	}
	if err := ValidateSize(0); err == nil {
		t.Error("ValidateSize(0) should fail")
	}
}

func TestValidateBound(t *testing.T) {
	if err := ValidateBound("max size", 0); err != nil {
		t.Errorf("zero bound should be accepted: %v", err)
	}
	if err := ValidateBound("max size", -1); err == nil {
		t.Error("negative bound should fail")
	}
}

// Shoplink - Content Publishing and Affiliate Commerce Platform
// Copyright 2026 Shoplink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplink/shoplink

package validation

import (
	"strings"
	"testing"
)

type testRequest struct {
	Title       string  `validate:"required"`
	MaxProducts int     `validate:"omitempty,min=1,max=50"`
	MinScore    float64 `validate:"omitempty,gte=0,lte=100"`
	Placement   string  `validate:"omitempty,oneof=inline sidebar footer"`
}

func TestValidateStructValid(t *testing.T) {
	req := testRequest{Title: "Best Espresso Machines", MaxProducts: 5, Placement: "inline"}
	if err := ValidateStruct(&req); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateStructSingleError(t *testing.T) {
	req := testRequest{Title: ""}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error for missing title")
	}

	errs := err.Errors()
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if errs[0].Field() != "Title" || errs[0].Tag() != "required" {
		t.Errorf("error = %s/%s, want Title/required", errs[0].Field(), errs[0].Tag())
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q", apiErr.Code)
	}
	if apiErr.Message != "Title is required" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "Title" {
		t.Errorf("details = %v", apiErr.Details)
	}
}

func TestValidateStructMultipleErrors(t *testing.T) {
	req := testRequest{Title: "", MaxProducts: 99, Placement: "banner"}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation errors")
	}

	errs := err.Errors()
	if len(errs) != 3 {
		t.Fatalf("got %d errors, want 3: %v", len(errs), err)
	}

	apiErr := err.ToAPIError()
	if !strings.Contains(apiErr.Message, "Title") || !strings.Contains(apiErr.Message, "MaxProducts") {
		t.Errorf("combined message missing fields: %q", apiErr.Message)
	}
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 3 {
		t.Errorf("details fields = %v", apiErr.Details["fields"])
	}
}

func TestTranslateErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		req  testRequest
		want string
	}{
		{
			name: "max numeric",
			req:  testRequest{Title: "x", MaxProducts: 51},
			want: "MaxProducts must be at most 50",
		},
		{
			name: "lte",
			req:  testRequest{Title: "x", MinScore: 150},
			want: "MinScore must be less than or equal to 100",
		},
		{
			name: "oneof",
			req:  testRequest{Title: "x", Placement: "popup"},
			want: "Placement must be one of: inline sidebar footer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if got := err.Errors()[0].Error(); got != tt.want {
				t.Errorf("message = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator returned different instances")
	}
}

package domain

import (
	"errors"
	"testing"
)

func TestValidateCreateSessionData_Valid(t *testing.T) {
	data := CreateSessionData{
		Title:        "Fix login bug",
		Repo:         "acme/webapp",
		TargetBranch: "main",
	}

	if err := ValidateCreateSessionData(data); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestValidateCreateSessionData_MissingRepo(t *testing.T) {
	data := CreateSessionData{TargetBranch: "main"}

	err := ValidateCreateSessionData(data)
	if err == nil {
		t.Fatal("Expected validation error, got nil")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected *ValidationError, got %T", err)
	}
	if verr.FieldError("repo") == "" {
		t.Error("Expected field error for repo")
	}
	if verr.FieldError("targetBranch") != "" {
		t.Errorf("Unexpected field error for targetBranch: %q", verr.FieldError("targetBranch"))
	}
}

func TestValidateCreateSessionData_WhitespaceOnly(t *testing.T) {
	data := CreateSessionData{
		Repo:         "   ",
		TargetBranch: "\t\n",
	}

	err := ValidateCreateSessionData(data)
	if err == nil {
		t.Fatal("Expected validation error for whitespace-only fields, got nil")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected *ValidationError, got %T", err)
	}
	if len(verr.Fields) != 2 {
		t.Errorf("Expected 2 field errors, got %d: %v", len(verr.Fields), verr.Fields)
	}
}

func TestValidatePromptContent_Empty(t *testing.T) {
	if err := ValidatePromptContent("  "); err == nil {
		t.Error("Expected error for blank content, got nil")
	}
	if err := ValidatePromptContent("hello"); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestValidationError_ErrorIsStable(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"repo":         "repository is required",
		"targetBranch": "target branch is required",
	}}

	first := err.Error()
	for i := 0; i < 10; i++ {
		if got := err.Error(); got != first {
			t.Fatalf("Expected stable message, got %q then %q", first, got)
		}
	}
}

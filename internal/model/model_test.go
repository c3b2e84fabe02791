// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"
)

// =============================================================================
// ROLE TESTS
// =============================================================================

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"teacher", RoleTeacher},
		{"student", RoleStudent},
		{"", RoleUnknown},
		{"admin", RoleUnknown},
		{"Teacher", RoleUnknown}, // wire values are lowercase, no fuzz
	}

	for _, tt := range tests {
		if got := ParseRole(tt.in); got != tt.want {
			t.Errorf("ParseRole(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRole_Valid(t *testing.T) {
	if !RoleTeacher.Valid() || !RoleStudent.Valid() {
		t.Error("known roles should be valid")
	}
	if RoleUnknown.Valid() {
		t.Error("RoleUnknown should not be valid")
	}
}

func TestRole_JSONRoundTrip(t *testing.T) {
	u := User{ID: 1, Email: "t@example.com", FullName: "T", Role: RoleTeacher}

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var back User
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back.Role != RoleTeacher {
		t.Errorf("Role = %v, want RoleTeacher", back.Role)
	}
}

func TestRole_UnmarshalUnknownValue(t *testing.T) {
	var u User
	if err := json.Unmarshal([]byte(`{"id":1,"role":"superuser"}`), &u); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if u.Role != RoleUnknown {
		t.Errorf("Role = %v, want RoleUnknown", u.Role)
	}
}

func TestRole_MarshalUnknownFails(t *testing.T) {
	if _, err := json.Marshal(RoleUnknown); err == nil {
		t.Error("expected error marshaling RoleUnknown")
	}
}

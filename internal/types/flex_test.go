// flex_test.go
//
// AI report card-deck resolution service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of carddeck.
// carddeck is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// carddeck is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with carddeck.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package types

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestFlexListScalarAndArray(t *testing.T) {
	var fromScalar FlexList[string]
	if err := json.Unmarshal([]byte(`"ai"`), &fromScalar); err != nil {
		t.Fatalf("Scalar unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(fromScalar.Slice(), []string{"ai"}) {
		t.Errorf("Expected single-item slice, got %v", fromScalar)
	}

	var fromArray FlexList[string]
	if err := json.Unmarshal([]byte(`["ai","fintech"]`), &fromArray); err != nil {
		t.Fatalf("Array unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(fromArray.Slice(), []string{"ai", "fintech"}) {
		t.Errorf("Expected two-item slice, got %v", fromArray)
	}

	var fromNull FlexList[string]
	if err := json.Unmarshal([]byte(`null`), &fromNull); err != nil {
		t.Fatalf("Null unmarshal failed: %v", err)
	}
	if fromNull != nil {
		t.Errorf("Expected nil for null, got %v", fromNull)
	}
}

func TestFlexStrings(t *testing.T) {
	cases := []struct {
		in   any
		want []string
	}{
		{"ai", []string{"ai"}},
		{"", nil},
		{[]string{"a", "b"}, []string{"a", "b"}},
		{[]any{"a", 7, "b"}, []string{"a", "b"}},
		{42, nil},
		{nil, nil},
	}
	for _, c := range cases {
		got := FlexStrings(c.in)
		if len(got) == 0 && len(c.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("FlexStrings(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestFlexContains(t *testing.T) {
	if !FlexContains([]any{"ai", "blockchain"}, "blockchain") {
		t.Error("Expected membership in mixed array")
	}
	if !FlexContains("ai", "ai") {
		t.Error("Expected scalar equality match")
	}
	if FlexContains("ai", "fintech") {
		t.Error("Expected no match on different scalar")
	}
	if FlexContains(nil, "ai") {
		t.Error("Expected no match on nil")
	}
}

func TestFlexUint64NumberAndString(t *testing.T) {
	var fromNumber FlexUint64
	if err := json.Unmarshal([]byte(`151`), &fromNumber); err != nil {
		t.Fatalf("Number unmarshal failed: %v", err)
	}
	if fromNumber.Uint64() != 151 {
		t.Errorf("Expected 151, got %d", fromNumber)
	}

	var fromString FlexUint64
	if err := json.Unmarshal([]byte(`"151"`), &fromString); err != nil {
		t.Fatalf("String unmarshal failed: %v", err)
	}
	if fromString.Uint64() != 151 {
		t.Errorf("Expected 151 from quoted string, got %d", fromString)
	}

	var bad FlexUint64
	if err := json.Unmarshal([]byte(`"one"`), &bad); err == nil {
		t.Error("Expected error for non-numeric string")
	}

	out, err := json.Marshal(FlexUint64(7))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != "7" {
		t.Errorf("Expected bare number on marshal, got %s", out)
	}
}

func TestRawStringMarshal(t *testing.T) {
	out, err := json.Marshal(RawString(`{"broken":`))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != `"{\"broken\":"` {
		t.Errorf("Expected escaped string form, got %s", out)
	}
}

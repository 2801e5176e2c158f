package util

import (
	"reflect"
	"testing"
)

func TestExpandRange(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    []int
		wantErr bool
	}{
		{name: "single value", spec: "5", want: []int{5}},
		{name: "simple range", spec: "1-5", want: []int{1, 2, 3, 4, 5}},
		{name: "comma separated", spec: "1,3,5", want: []int{1, 3, 5}},
		{name: "mixed", spec: "1-3,5,7-9", want: []int{1, 2, 3, 5, 7, 8, 9}},
		{name: "with spaces", spec: "1 - 3, 5", want: []int{1, 2, 3, 5}},
		{name: "duplicates removed", spec: "1-3,2-4", want: []int{1, 2, 3, 4}},
		{name: "empty string", spec: "", want: nil},
		{name: "invalid - start > end", spec: "5-1", wantErr: true},
		{name: "invalid - not a number", spec: "abc", wantErr: true},
		{name: "invalid - bad range format", spec: "1-2-3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandRange(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Errorf("ExpandRange(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
				return
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExpandRange(%q) = %v, want %v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestExpandVLANRange(t *testing.T) {
	got, err := ExpandVLANRange("10,20-22")
	if err != nil {
		t.Fatalf("ExpandVLANRange() error = %v", err)
	}
	if !reflect.DeepEqual(got, []int{10, 20, 21, 22}) {
		t.Errorf("ExpandVLANRange() = %v", got)
	}

	for _, spec := range []string{"0", "4095", "4090-4100"} {
		if _, err := ExpandVLANRange(spec); err == nil {
			t.Errorf("ExpandVLANRange(%q) should fail", spec)
		}
	}
}

func TestCompactRange(t *testing.T) {
	tests := []struct {
		in   []int
		want string
	}{
		{nil, ""},
		{[]int{5}, "5"},
		{[]int{1, 2, 3, 5, 7, 8, 9}, "1-3,5,7-9"},
		{[]int{9, 1, 2, 2, 3}, "1-3,9"},
	}
	for _, tt := range tests {
		if got := CompactRange(tt.in); got != tt.want {
			t.Errorf("CompactRange(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUniqueInts(t *testing.T) {
	tests := []struct {
		name string
		in   []int
		want []int
	}{
		{"nil", nil, nil},
		{"keeps first-seen order", []int{30, 10, 30, 20, 10}, []int{30, 10, 20}},
		{"no duplicates", []int{1, 2, 3}, []int{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UniqueInts(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("UniqueInts(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestJoinInts(t *testing.T) {
	if got := JoinInts([]int{10, 20, 30}, ","); got != "10,20,30" {
		t.Errorf("JoinInts() = %q", got)
	}
	if got := JoinInts(nil, ","); got != "" {
		t.Errorf("JoinInts(nil) = %q", got)
	}
}

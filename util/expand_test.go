package util

import "testing"

func TestExpand(t *testing.T) {
	mapping := func(s string) (string, error) {
		return map[string]string{
			"OUT_DIR": "build",
			"HOME":    "/home/user",
		}[s], nil
	}

	testCases := []struct {
		name    string
		in      string
		out     string
		wantErr bool
	}{
		{
			name: "no variables",
			in:   "-O -g",
			out:  "-O -g",
		},
		{
			name: "single variable",
			in:   "-L $(OUT_DIR)",
			out:  "-L build",
		},
		{
			name: "variable with surrounding text",
			in:   "--sysroot=$(HOME)/sysroot",
			out:  "--sysroot=/home/user/sysroot",
		},
		{
			name: "escaped dollar",
			in:   "$$ORIGIN",
			out:  "$ORIGIN",
		},
		{
			name:    "trailing dollar",
			in:      "-L $",
			wantErr: true,
		},
		{
			name:    "missing close paren",
			in:      "$(OUT_DIR",
			wantErr: true,
		},
		{
			name:    "bare variable",
			in:      "$OUT_DIR",
			wantErr: true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			got, err := Expand(testCase.in, mapping)
			if testCase.wantErr {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != testCase.out {
				t.Errorf("expected %q got %q", testCase.out, got)
			}
		})
	}
}

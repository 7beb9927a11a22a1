package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type leaf struct {
	Name string
	err  error
}

func (l *leaf) Validate() error {
	if l.err != nil {
		return l.err
	}
	if l.Name == "" {
		l.Name = "default"
	}
	return nil
}

type root struct {
	Value    leaf
	Optional *leaf
	Plain    string
	Count    int
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	errBad := errors.New("bad leaf")

	tests := []struct {
		name    string
		cfg     *root
		wantErr error
		check   func(t *testing.T, cfg *root)
	}{
		{
			name: "fills defaults through value fields",
			cfg:  &root{},
			check: func(t *testing.T, cfg *root) {
				assert.Equal(t, "default", cfg.Value.Name)
			},
		},
		{
			name: "validates non-nil pointer fields",
			cfg:  &root{Optional: &leaf{}},
			check: func(t *testing.T, cfg *root) {
				assert.Equal(t, "default", cfg.Optional.Name)
			},
		},
		{
			name:    "propagates validation errors",
			cfg:     &root{Optional: &leaf{err: errBad}},
			wantErr: errBad,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateConfig(tt.cfg)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), "key: Optional")
				return
			}
			require.NoError(t, err)
			tt.check(t, tt.cfg)
		})
	}
}

func TestValidateConfigRejectsNonStruct(t *testing.T) {
	t.Parallel()

	require.Error(t, ValidateConfig(root{}))
	require.Error(t, ValidateConfig((*root)(nil)))
}

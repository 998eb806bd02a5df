package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: 0},
		{name: "help", err: &flags.Error{Type: flags.ErrHelp, Message: "usage"}, want: 0},
		{name: "unknown flag", err: &flags.Error{Type: flags.ErrUnknownFlag, Message: "unknown flag `x'"}, want: 2},
		{name: "wrapped usage error", err: fmt.Errorf("parse: %w", &flags.Error{Type: flags.ErrRequired}), want: 2},
		{name: "command error", err: errors.New("extract error"), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestExitCode_Parser(t *testing.T) {
	p := flags.NewParser(&struct {
		Verbose bool `short:"v"`
	}{}, flags.None)

	_, err := p.ParseArgs([]string{"--nope"})
	assert.Equal(t, 2, exitCode(err))
}

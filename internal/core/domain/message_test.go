package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinkOutcome_Valid(t *testing.T) {
	tests := []struct {
		name string
		msg  LinkOutcome
		want bool
	}{
		{
			name: "well formed success",
			msg:  LinkOutcome{Type: MessageTypeConnectorLinked, Success: true, ConnectorID: "gmail"},
			want: true,
		},
		{
			name: "well formed failure",
			msg:  LinkOutcome{Type: MessageTypeConnectorLinked, ConnectorID: "gmail", Error: "denied"},
			want: true,
		},
		{
			name: "wrong type discriminator",
			msg:  LinkOutcome{Type: "SOMETHING_ELSE", Success: true, ConnectorID: "gmail"},
			want: false,
		},
		{
			name: "missing type",
			msg:  LinkOutcome{Success: true, ConnectorID: "gmail"},
			want: false,
		},
		{
			name: "missing connector id",
			msg:  LinkOutcome{Type: MessageTypeConnectorLinked, Success: true},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.msg.Valid())
		})
	}
}

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vvka-141/pgdash/pkg/pgdash"
)

func TestInferColumnType(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   pgdash.ColumnType
	}{
		{"integers", []string{"1", "-42", "+7", "0"}, pgdash.ColumnInteger},
		{"integers with blanks", []string{"1", "", "3"}, pgdash.ColumnInteger},
		{"floats", []string{"1.5", "2", "3e2", ".5"}, pgdash.ColumnFloat},
		{"leading zeros stay text", []string{"01310", "22041"}, pgdash.ColumnText},
		{"leading zero float stays text", []string{"01.5"}, pgdash.ColumnText},
		{"zero point five is float", []string{"0.5"}, pgdash.ColumnFloat},
		{"nan is text", []string{"1.0", "NaN"}, pgdash.ColumnText},
		{"inf is text", []string{"Inf"}, pgdash.ColumnText},
		{"hex is text", []string{"0x1F"}, pgdash.ColumnText},
		{"huge integer becomes float", []string{"99999999999999999999"}, pgdash.ColumnFloat},
		{"timestamps", []string{"2017-10-02 10:56:33", "2018-01-01", "2018/02/03"}, pgdash.ColumnTimestamp},
		{"rfc3339", []string{"2018-01-01T10:00:00Z"}, pgdash.ColumnTimestamp},
		{"mixed", []string{"1", "sp"}, pgdash.ColumnText},
		{"dates and numbers", []string{"2018-01-01", "5"}, pgdash.ColumnText},
		{"all empty", []string{"", "  "}, pgdash.ColumnUnknown},
		{"no values", nil, pgdash.ColumnUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferColumnType(tt.values))
		})
	}
}

func TestNormalizeColumnName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Customer ID ", "customer_id"},
		{"review_score", "review_score"},
		{"Order  Purchase\tTimestamp", "order_purchase_timestamp"},
		{"   ", ""},
		{"ÇIDADE", "çidade"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeColumnName(tt.in))
		})
	}
}

func TestNormalizeColumnNames_Collisions(t *testing.T) {
	got := NormalizeColumnNames([]string{"ID", "id ", "Id", "id_2"})
	assert.Equal(t, []string{"id", "id_2", "id_3", "id_2_2"}, got)
}

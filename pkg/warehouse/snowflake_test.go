package warehouse

import "testing"

func TestBoundQueryWrapsSelects(t *testing.T) {
	tests := []struct {
		name  string
		query string
		limit int
		want  string
	}{
		{
			name:  "select wrapped",
			query: "SELECT * FROM orders",
			limit: 10,
			want:  "SELECT * FROM (SELECT * FROM orders) LIMIT 10",
		},
		{
			name:  "lowercase select wrapped",
			query: "select 1",
			limit: 5,
			want:  "SELECT * FROM (select 1) LIMIT 5",
		},
		{
			name:  "with wrapped",
			query: "WITH c AS (SELECT 1 AS n) SELECT n FROM c",
			limit: 100,
			want:  "SELECT * FROM (WITH c AS (SELECT 1 AS n) SELECT n FROM c) LIMIT 100",
		},
		{
			name:  "trailing semicolon stripped before wrapping",
			query: "SELECT 1;\n",
			limit: 10,
			want:  "SELECT * FROM (SELECT 1) LIMIT 10",
		},
		{
			name:  "show runs unwrapped",
			query: "SHOW TABLES",
			limit: 10,
			want:  "SHOW TABLES",
		},
		{
			name:  "describe runs unwrapped",
			query: "DESCRIBE TABLE orders",
			limit: 10,
			want:  "DESCRIBE TABLE orders",
		},
		{
			name:  "desc runs unwrapped",
			query: "DESC TABLE orders;",
			limit: 10,
			want:  "DESC TABLE orders",
		},
		{
			name:  "explain runs unwrapped",
			query: "EXPLAIN SELECT * FROM orders",
			limit: 10,
			want:  "EXPLAIN SELECT * FROM orders",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := boundQuery(tt.query, tt.limit); got != tt.want {
				t.Errorf("boundQuery(%q, %d) = %q, want %q", tt.query, tt.limit, got, tt.want)
			}
		})
	}
}

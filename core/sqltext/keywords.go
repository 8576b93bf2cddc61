package sqltext

import "strings"

// keywords is the set of words upper-cased during normalization.
var keywords = toSet(
	"ADD", "ALL", "ALTER", "AND", "ANY", "AS", "ASC", "AVG", "BETWEEN", "BY", "CASE", "CAST",
	"COALESCE", "COUNT", "CREATE", "CROSS", "CURRENT_DATE", "CURRENT_TIMESTAMP", "DECODE",
	"DELETE", "DENSE_RANK", "DESC", "DISTINCT", "DROP", "ELSE", "END", "EXCEPT", "EXISTS",
	"FETCH", "FIRST", "FIRST_VALUE", "FOLLOWING", "FOR", "FROM", "FULL", "GROUP", "HAVING",
	"ILIKE", "IN", "INNER", "INSERT", "INTERSECT", "INTO", "IS", "ISNULL", "JOIN", "LAG",
	"LAST", "LAST_VALUE", "LATERAL", "LEAD", "LEFT", "LIKE", "LIMIT", "MAX", "MERGE", "MIN",
	"MINUS", "NATURAL", "NOT", "NTILE", "NULL", "NULLIF", "NULLS", "NVL", "OFFSET", "ON",
	"OR", "ORDER", "OUTER", "OVER", "PARTITION", "PRECEDING", "RANK", "RECURSIVE", "RIGHT",
	"ROW", "ROWNUM", "ROWS", "ROW_NUMBER", "SELECT", "SET", "STDDEV", "SUM", "SYSDATE",
	"TABLE", "THEN", "TOP", "UNBOUNDED", "UNION", "UPDATE", "USING", "VALUES", "VARIANCE",
	"VIEW", "WHEN", "WHERE", "WITH",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// IsKeyword reports whether word is a recognized SQL keyword, ignoring case.
func IsKeyword(word string) bool {
	_, ok := keywords[strings.ToUpper(word)]
	return ok
}

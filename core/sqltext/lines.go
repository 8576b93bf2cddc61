package sqltext

// LineCount counts lines the way a line splitter would: "\n", "\r\n" and "\r"
// end a line and a trailing terminator does not start a new one.
func LineCount(sql string) int {
	if sql == "" {
		return 0
	}
	n := 0
	for i := 0; i < len(sql); i++ {
		switch sql[i] {
		case '\n':
			n++
		case '\r':
			n++
			if i+1 < len(sql) && sql[i+1] == '\n' {
				i++
			}
		}
	}
	if last := sql[len(sql)-1]; last != '\n' && last != '\r' {
		n++
	}
	return n
}

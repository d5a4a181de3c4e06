package plural

// Int returns suffix unless n is one, as in
// fmt.Sprintf("%d document%s", n, plural.Int(n, "s")).
func Int[I ~int | ~int64](n I, suffix string) string {
	if n == 1 {
		return ""
	}
	return suffix
}

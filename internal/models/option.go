package models

// Option кнопка клавиатуры. Data задает inline-кнопку,
// без Data кнопка попадает в обычную клавиатуру.
type Option struct {
	Label          string
	Data           string
	RequestContact bool
}

// Column раскладывает кнопки по одной в ряд.
func Column(opts ...Option) [][]Option {
	rows := make([][]Option, 0, len(opts))
	for _, o := range opts {
		rows = append(rows, []Option{o})
	}
	return rows
}

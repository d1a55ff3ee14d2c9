package layout

// Paginate returns the number of pages needed for total data rows at perPage
// rows each. The header row is not counted. Zero rows still produce one page.
func Paginate(total, perPage int) int {
	if perPage <= 0 {
		perPage = 1
	}
	if total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// PageRange returns the half-open data row index range [start, end) of page p.
func PageRange(p, perPage, total int) (start, end int) {
	if perPage <= 0 {
		perPage = 1
	}
	start = p * perPage
	end = min((p+1)*perPage, total)
	if start > total {
		start = total
	}
	if end < start {
		end = start
	}
	return start, end
}

// Page is one rendered page: the header row followed by its data rows.
type Page struct {
	Index int
	Total int
	Start int
	End   int
	Rows  [][]string
}

// Pages splits data into pages and prepends header to every page.
func Pages(header []string, data [][]string, perPage int) []Page {
	count := Paginate(len(data), perPage)
	pages := make([]Page, 0, count)
	for p := 0; p < count; p++ {
		start, end := PageRange(p, perPage, len(data))
		rows := make([][]string, 0, end-start+1)
		rows = append(rows, header)
		rows = append(rows, data[start:end]...)
		pages = append(pages, Page{
			Index: p,
			Total: count,
			Start: start,
			End:   end,
			Rows:  rows,
		})
	}
	return pages
}

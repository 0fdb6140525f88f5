// Package pagination turns the list commands' --skip/--limit and
// --page/--page-size flags into a store.Page, describes the resulting window
// and sorts a fetched page by column.
package pagination

package dto

type EntryOutput struct {
	Path   string
	Kind   string
	Status string
}

type InitOutput struct {
	Root    string
	Entries []EntryOutput
	Created int
}

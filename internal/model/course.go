package model

// Category groups courses.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Course represents a catalog course.
type Course struct {
	ID          string `json:"id"`
	CategoryID  string `json:"categoryId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URI         string `json:"uri"`
}

// Program represents an academic program. Users reference it by ProgramID.
type Program struct {
	ID      string `json:"id"`
	Faculty string `json:"faculty"`
	Name    string `json:"name"`
	URI     string `json:"uri"`
}

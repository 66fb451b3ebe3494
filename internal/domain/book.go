// Package domain contains the core business entities for the Shelfline library server.
package domain

import "time"

// Book represents a title in the catalog.
//
// Copies is the live count of physical copies available for lending and
// never drops below zero. For eBooks the counter is carried but ignored:
// the lending path refuses eBooks outright.
type Book struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author,omitempty"`
	Description  string    `json:"description,omitempty"`
	CategoryID   string    `json:"category_id,omitempty"`
	CategoryName string    `json:"category_name,omitempty"` // denormalized on reads
	IsEbook      bool      `json:"is_ebook"`
	PDFPath      string    `json:"pdf_path,omitempty"`
	Copies       int       `json:"copies"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Category groups books for browsing.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

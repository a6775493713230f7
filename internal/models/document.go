package models

// Document represents one KML document with its placemarks.
type Document struct {
	Title       string    // Title is written as the document name.
	Description string    // Description is written as the document description.
	Placemarks  RecordSet // Placemarks in output order.
}

// NewDocument builds a document for the given records using the default description.
func NewDocument(title string, records RecordSet) Document {
	return Document{
		Title:       title,
		Description: "Generated KML from " + title,
		Placemarks:  records,
	}
}

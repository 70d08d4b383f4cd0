// package models defines the data model for the library client: the wire
// shapes exchanged with the catalog backend and the locally persisted
// session and progress records.
package models

// Package memory holds in-process implementations of the repository ports.
// They apply the same filters as the MongoDB repositories and are used for
// local runs without a database and as test doubles.
package memory

import "go.mongodb.org/mongo-driver/bson/primitive"

// newID returns an id in the same format the MongoDB store produces.
func newID() string {
	return primitive.NewObjectID().Hex()
}

package cows

import "go.appointy.com/party/schemabuilder"

// RegisterSchema registers the whole cow domain on r.
func RegisterSchema(r *schemabuilder.Registry, barn *Barn) {
	RegisterObjects(r, barn)
	RegisterInputs(r)

	RegisterQuery(r, barn)
	RegisterMutation(r, barn)
}

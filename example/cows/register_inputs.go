package cows

import "go.appointy.com/party/schemabuilder"

func RegisterInputs(r *schemabuilder.Registry) {
	r.InputType(NewCowInput{}, schemabuilder.TypeDesc("Input for adding a cow to the barn.")).
		Field("name", schemabuilder.NonNull(schemabuilder.String), schemabuilder.Property("Name")).
		Field("breed", schemabuilder.String, schemabuilder.Property("Breed")).
		Field("motherId", schemabuilder.ID, schemabuilder.Property("MotherID"))

	r.InputType(CowFilter{}).FromStruct()
}

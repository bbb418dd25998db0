package cows

import "go.appointy.com/party/schemabuilder"

// RegisterObjects registers the output types. Cow inherits name from Animal
// through the embedded struct.
func RegisterObjects(r *schemabuilder.Registry, barn *Barn) {
	r.ObjectType(Animal{}, schemabuilder.TypeDesc("Anything living in the barn.")).
		Field("name", schemabuilder.NonNull(schemabuilder.String), schemabuilder.Property("Name"))

	r.ObjectType(Cow{}, schemabuilder.TypeDesc("A cow and its lineage.")).
		Field("id", schemabuilder.NonNull(schemabuilder.ID), schemabuilder.Property("ID")).
		FromStruct().
		FieldFunc("soundsLike", schemabuilder.NonNull(schemabuilder.String), func(c *Cow) string {
			return "moo!"
		}).
		FieldFunc("mother", Cow{}, barn.Mother, schemabuilder.FieldDesc("Null when the mother is not in the barn."))
}

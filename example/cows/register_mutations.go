package cows

import "go.appointy.com/party/schemabuilder"

func RegisterMutation(r *schemabuilder.Registry, barn *Barn) {
	r.Mutation(CowMutations{}).
		Instance(&CowMutations{barn: barn}).
		Method("AddCow", schemabuilder.NonNull(Cow{}),
			schemabuilder.ArgParam(0, "input", schemabuilder.NonNull(NewCowInput{})),
			schemabuilder.FieldDesc("Adds a cow painted in the barn color."),
		).
		Method("RemoveCow", schemabuilder.NonNull(schemabuilder.Boolean),
			schemabuilder.ArgParam(0, "id", schemabuilder.NonNull(schemabuilder.ID)),
		)
}

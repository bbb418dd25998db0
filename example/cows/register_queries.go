package cows

import "go.appointy.com/party/schemabuilder"

// RegisterQuery registers the Query fields of CowQueries and the HerdStats
// plugin. CowQueries is created by its constructor and shares barn.
func RegisterQuery(r *schemabuilder.Registry, barn *Barn) {
	r.Query(HerdStats{}).
		Constructor(NewHerdStats, barn).
		Method("HerdSize", schemabuilder.NonNull(schemabuilder.Int), schemabuilder.FieldDesc("Number of cows in the barn.")).
		Method("Breeds", schemabuilder.NonNull(schemabuilder.List(schemabuilder.NonNull(schemabuilder.String))))

	r.Query(CowQueries{}).
		Constructor(NewCowQueries, barn).
		Method("Cows", schemabuilder.NonNull(schemabuilder.List(schemabuilder.NonNull(Cow{}))),
			schemabuilder.ArgParam(0, "filter", CowFilter{}),
			schemabuilder.FieldDesc("All cows, optionally filtered by breed."),
		).
		Method("Cow", Cow{},
			schemabuilder.ArgParam(0, "id", schemabuilder.NonNull(schemabuilder.ID)),
			schemabuilder.FieldDesc("Fetch a cow by ID."),
		).
		Method("BarnColor", schemabuilder.NonNull(schemabuilder.String)).
		Func("farmer", schemabuilder.String, func(user string) string {
			return user
		}, schemabuilder.ContextParam(0, "user"), schemabuilder.FieldDesc("The caller named by the "+UserHeader+" header.")).
		Use(func(interface{}) (interface{}, error) {
			return HerdStats{}, nil
		})
}

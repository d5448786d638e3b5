// Package jsonskema compiles draft-07 JSON Schema documents into validators.
//
// - Every schema and subschema is addressed by URI ($id, JSON pointer and
//   plain-name fragments), and $ref resolves within and across documents
// - A RootSchema is built in two phases: declare (identifiers) then define
//   (validators), loading external documents through Support
// - Schema.Call forms values (objects become enforce.Mapping containers that
//   keep validating themselves on mutation); Schema.Valid and Validate check
// - Schema.Debug records every evaluated keyword in Results, which convert
//   to Issues or render as a trace
//
// Design policy:
// - No global registries: formats, encodings, traits and loaders are passed
//   explicitly through Support.
// - The value algebra lives in value/, containers in enforce/, URI handling
//   in uri/, codecs in codec/ and index-backed loading in index/.
//
// Typical usage:
//
//	r, err := jsonskema.LoadJSON(ctx, data, "file:///person.json", jsonskema.NewSupport())
//	if err := r.Validate(doc); err != nil {
//		iss, _ := jsonskema.AsIssues(err)
//	}
//
//	res := jsonskema.NewResults()
//	r.Debug(doc, res)
//	res.Render(os.Stderr)
package jsonskema

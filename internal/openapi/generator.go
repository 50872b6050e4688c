// Package openapi generates the OpenAPI document for the Hearth API. The
// route surface is fixed, so the document is built once at startup.
package openapi

import (
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// GenerateSpec builds the OpenAPI 3.1 document for the Hearth API.
func GenerateSpec(baseURL string) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       "Hearth API",
			Description: "Session-authenticated backend for the Hearth community-events application.",
			Version:     "1.0.0",
		},
		Servers: openapi3.Servers{
			{URL: baseURL},
		},
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	components.SecuritySchemes = openapi3.SecuritySchemes{}
	doc.Components = &components

	doc.Components.SecuritySchemes["sessionCookie"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type: "apiKey",
			In:   "cookie",
			Name: "hearth_session",
		},
	}

	doc.Components.Schemas["ErrorResponse"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"error": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type: &openapi3.Types{"object"},
						Properties: openapi3.Schemas{
							"code":    schemaOf("integer"),
							"message": schemaOf("string"),
						},
					},
				},
			},
		},
	}

	doc.Components.Schemas["Account"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"id":             schemaOf("string"),
				"username":       schemaOf("string"),
				"email":          schemaOf("string"),
				"isAdmin":        schemaOf("boolean"),
				"profilePicture": schemaOf("string"),
				"coverPicture":   schemaOf("string"),
				"createdAt":      schemaOf("string"),
				"lastUpdated":    schemaOf("string"),
			},
		},
	}

	doc.Components.Schemas["Event"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"id":          schemaOf("string"),
				"accountId":   schemaOf("string"),
				"username":    schemaOf("string"),
				"title":       schemaOf("string"),
				"description": schemaOf("string"),
				"image":       schemaOf("string"),
				"createdAt":   schemaOf("string"),
				"lastUpdated": schemaOf("string"),
			},
		},
	}

	doc.Paths = openapi3.NewPaths()

	addOp(doc, "/auth/signup", "post", "Register a new account", false,
		[]int{201, 400, 409})
	addOp(doc, "/auth/login", "post", "Verify credentials and establish a session", false,
		[]int{200, 400, 401})
	addOp(doc, "/auth/logout", "post", "End the current session", false,
		[]int{200})
	addOp(doc, "/auth/isLoggedIn", "get", "Return the account bound to the session", true,
		[]int{200, 401})
	addOp(doc, "/auth/update", "put", "Partially update the caller's account", true,
		[]int{200, 400, 401, 404, 409})
	addOp(doc, "/auth/update_admins", "post", "Grant or revoke admin capability in bulk", true,
		[]int{200, 400, 401, 403})

	addOp(doc, "/events", "get", "List all events", false, []int{200})
	addOp(doc, "/events", "post", "Create an event", true, []int{201, 400, 401})
	addOp(doc, "/events/{eventId}", "get", "Get an event", false, []int{200, 404})
	addOp(doc, "/events/{eventId}", "put", "Update an event", true, []int{200, 400, 401, 404})
	addOp(doc, "/events/{eventId}", "delete", "Delete an event", true, []int{200, 401, 404})

	addOp(doc, "/files", "post", "Upload a picture and associate it with the caller's account", true,
		[]int{200, 400, 401})
	addOp(doc, "/files", "get", "List stored files", true, []int{200, 401, 403})
	addOp(doc, "/files/{filename}", "delete", "Delete a stored file", true, []int{200, 401, 403, 404})

	return doc
}

func schemaOf(typ string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{typ}}}
}

var statusText = map[int]string{
	200: "OK",
	201: "Created",
	400: "Bad request",
	401: "Unauthorized",
	403: "Forbidden",
	404: "Not found",
	409: "Conflict",
}

func addOp(doc *openapi3.T, path, method, summary string, secured bool, statuses []int) {
	op := openapi3.NewOperation()
	op.Summary = summary
	op.Responses = openapi3.NewResponses()

	for _, status := range statuses {
		desc := statusText[status]
		resp := openapi3.NewResponse().WithDescription(desc)
		if status >= 400 {
			resp = resp.WithJSONSchemaRef(&openapi3.SchemaRef{Ref: "#/components/schemas/ErrorResponse"})
		}
		op.Responses.Set(strconv.Itoa(status), &openapi3.ResponseRef{Value: resp})
	}

	if secured {
		op.Security = &openapi3.SecurityRequirements{{"sessionCookie": {}}}
	}

	item := doc.Paths.Value(path)
	if item == nil {
		item = &openapi3.PathItem{}
		doc.Paths.Set(path, item)
	}
	item.SetOperation(strings.ToUpper(method), op)
}

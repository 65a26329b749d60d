package openapi

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-jsonforms/pkg/schema"
)

const petstore = `openapi: 3.0.3
info:
  title: Pets
  version: 1.0.0
paths:
  /pets:
    post:
      operationId: createPet
      requestBody:
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/Pet'
      responses:
        "201":
          description: created
  /pets/{id}/notes:
    put:
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: string
      requestBody:
        content:
          application/json:
            schema:
              type: object
              properties:
                text:
                  type: string
                pinned:
                  type: boolean
      responses:
        "204":
          description: updated
components:
  schemas:
    Pet:
      type: object
      properties:
        name:
          type: string
        tag:
          type: string
        owner:
          $ref: '#/components/schemas/Owner'
    Owner:
      type: object
      properties:
        lastName:
          type: string
        firstName:
          type: string
`

func loadPetstore(t *testing.T) *Spec {
	t.Helper()
	doc := schema.MustNewDocument(schema.SourceFromFS("petstore.yaml"), []byte(petstore))
	spec, err := Load(context.Background(), doc)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return spec
}

func TestSpec_Operations(t *testing.T) {
	spec := loadPetstore(t)
	var ids []string
	for _, op := range spec.Operations() {
		ids = append(ids, op.ID)
	}
	if diff := cmp.Diff([]string{"createPet", "put:/pets/{id}/notes"}, ids); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Pet", "Owner"}, spec.ComponentNames()); diff != "" {
		t.Fatalf("components mismatch (-want +got):\n%s", diff)
	}
}

func TestSpec_RequestBodySchemaFromComponent(t *testing.T) {
	spec := loadPetstore(t)
	body, err := spec.RequestBodySchema("createPet")
	if err != nil {
		t.Fatalf("request body: %v", err)
	}
	if diff := cmp.Diff([]string{"name", "tag", "owner"}, body.PropertyNames()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	owner, _ := body.Property("owner")
	if diff := cmp.Diff([]string{"lastName", "firstName"}, owner.PropertyNames()); diff != "" {
		t.Fatalf("nested ref not expanded (-want +got):\n%s", diff)
	}
}

func TestSpec_RequestBodySchemaInline(t *testing.T) {
	spec := loadPetstore(t)
	body, err := spec.RequestBodySchema("put:/pets/{id}/notes")
	if err != nil {
		t.Fatalf("request body: %v", err)
	}
	if diff := cmp.Diff([]string{"text", "pinned"}, body.PropertyNames()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSpec_UnknownOperation(t *testing.T) {
	spec := loadPetstore(t)
	_, err := spec.RequestBodySchema("deletePet")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
	if _, err := spec.ComponentSchema("Missing"); err == nil {
		t.Fatalf("expected missing component error")
	}
}

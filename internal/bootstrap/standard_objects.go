package bootstrap

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"

	"github.com/doulacrm/backend/internal/application/services"
	"github.com/doulacrm/backend/pkg/constants"
	"github.com/doulacrm/backend/pkg/models"
)

//go:embed standard_objects.json
var standardObjectsJSON []byte

// InitializeStandardObjects ensures the builtin doula-domain objects exist.
// Existing objects are left untouched, so operator edits to picklist values
// or field flags survive restarts.
func InitializeStandardObjects(ms *services.MetadataService) error {
	log.Println("🔧 Initializing standard objects...")

	var objects []models.ObjectDefinition
	if err := json.Unmarshal(standardObjectsJSON, &objects); err != nil {
		return fmt.Errorf("failed to parse standard_objects.json: %w", err)
	}

	ctx := context.Background()
	for i := range objects {
		obj := &objects[i]
		obj.OrgID = constants.DefaultOrgID

		created, err := ms.SeedStandardObject(ctx, obj)
		if err != nil {
			return fmt.Errorf("failed to seed %s: %w", obj.APIName, err)
		}
		if created {
			log.Printf("   ✅ %s object created (%d fields)", obj.APIName, len(obj.Fields))
		} else {
			log.Printf("   ✅ %s object already exists", obj.APIName)
		}
	}
	return nil
}

package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/secretops/attrcrypt/interfaces"
	"github.com/secretops/attrcrypt/orchestrator"
)

// attrRefPattern matches attribute references of the form
// __ATTR_REF_<dotted.path>__ inside recipe templates. Path segments are
// word characters and dashes, joined by dots.
var attrRefPattern = regexp.MustCompile(`__ATTR_REF_([\w-]+(?:\.[\w-]+)*)__`)

// ResolveTemplate replaces every attribute reference in a recipe template
// with the value the orchestrator reads at the referenced path. Encrypted
// attributes are decrypted transparently through the orchestrator's read
// path, so templates never see ciphertext.
//
// References inside JSON strings are replaced with the bare value when the
// reference spans the whole quoted string, preserving the value's JSON type;
// references embedded in longer strings are replaced textually.
//
// Returns an error when a referenced attribute cannot be read. A reference
// to an absent attribute resolves to null rather than failing, matching the
// read path's behavior for missing attributes.
func ResolveTemplate(ctx context.Context, log *slog.Logger, o *orchestrator.Orchestrator, template []byte) ([]byte, error) {
	refs := findAttributeReferences(string(template))
	resolved := string(template)

	for _, ref := range refs {
		path, err := interfaces.ParseAttributePath(ref.path)
		if err != nil {
			return nil, fmt.Errorf("invalid attribute reference %s: %w", ref.fullRef, err)
		}

		value, err := o.Read(ctx, path)
		if err != nil {
			log.Error("Failed to resolve attribute reference",
				slog.String("path", ref.path), "err", err)
			return nil, fmt.Errorf("failed to resolve reference %s: %w", ref.fullRef, err)
		}

		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode value for reference %s: %w", ref.fullRef, err)
		}

		resolved = replaceReference(resolved, ref.fullRef, encoded)
	}

	return []byte(resolved), nil
}

// attributeReference is one template reference with its parsed path.
type attributeReference struct {
	fullRef string
	path    string
}

// findAttributeReferences locates all attribute references in a template.
func findAttributeReferences(templateStr string) []attributeReference {
	matches := attrRefPattern.FindAllStringSubmatch(templateStr, -1)
	refs := make([]attributeReference, 0, len(matches))
	for _, match := range matches {
		refs = append(refs, attributeReference{
			fullRef: match[0],
			path:    match[1],
		})
	}
	return refs
}

// replaceReference substitutes a reference with its JSON-encoded value.
// A reference standing alone in a quoted string consumes the quotes, so the
// encoded value keeps its JSON type; an embedded reference is replaced with
// the string form of the value.
func replaceReference(templateStr, fullRef string, encoded []byte) string {
	quoted := `"` + fullRef + `"`
	re := regexp.MustCompile(regexp.QuoteMeta(quoted) + `|` + regexp.QuoteMeta(fullRef))

	return re.ReplaceAllStringFunc(templateStr, func(match string) string {
		if match == quoted {
			return string(encoded)
		}
		// Embedded in a longer string: splice in the value without quotes
		var s string
		if err := json.Unmarshal(encoded, &s); err == nil {
			return s
		}
		return string(encoded)
	})
}

package generator

import (
	"regexp"
	"strconv"
	"strings"

	"iacforge/internal/domain/entity"
)

// extractionRule recognizes one family of resource blocks. When FixedType is
// empty the pattern captures (type, name); otherwise it captures only the
// name and FixedType supplies the type.
type extractionRule struct {
	Pattern   *regexp.Regexp
	FixedType string
}

var extractionRules = map[entity.Provider][]extractionRule{
	entity.ProviderProxmox: {
		{Pattern: regexp.MustCompile(`resource\s+"proxmox_vm_qemu"\s+"([^"]+)"\s*\{`), FixedType: "proxmox_vm_qemu"},
		{Pattern: regexp.MustCompile(`resource\s+"proxmox_lxc"\s+"([^"]+)"\s*\{`), FixedType: "proxmox_lxc"},
	},
	entity.ProviderAWS: {
		{Pattern: regexp.MustCompile(`resource\s+"(aws_[a-z0-9_]+)"\s+"([^"]+)"\s*\{`)},
	},
	entity.ProviderAzure: {
		{Pattern: regexp.MustCompile(`resource\s+"(azurerm_[a-z0-9_]+)"\s+"([^"]+)"\s*\{`)},
	},
	entity.ProviderGCP: {
		{Pattern: regexp.MustCompile(`resource\s+"(google_[a-z0-9_]+)"\s+"([^"]+)"\s*\{`)},
	},
}

var (
	coresRe  = regexp.MustCompile(`cores\s*=\s*(\d+)`)
	memoryRe = regexp.MustCompile(`memory\s*=\s*(\d+)`)
)

// extractResources scans IaC text with the provider's rule set. Blocks that
// match no rule are skipped; malformed text yields fewer resources, never an
// error.
func extractResources(provider entity.Provider, code string) []entity.GeneratedResource {
	resources := []entity.GeneratedResource{}

	for _, rule := range extractionRules[provider] {
		for _, match := range rule.Pattern.FindAllStringSubmatchIndex(code, -1) {
			var resType, resName string
			if rule.FixedType != "" {
				resType = rule.FixedType
				resName = code[match[2]:match[3]]
			} else {
				resType = code[match[2]:match[3]]
				resName = code[match[4]:match[5]]
			}

			resources = append(resources, entity.GeneratedResource{
				Name:          resName,
				Type:          resType,
				Provider:      provider,
				Configuration: extractBlockConfig(code[match[1]:]),
				Dependencies:  []string{},
			})
		}
	}

	return resources
}

// extractBlockConfig pulls the simple numeric attributes out of one block
// body. The body is approximated as the text up to the next top-level
// resource keyword, which is enough for the sizing attributes we emit.
func extractBlockConfig(rest string) map[string]any {
	if next := strings.Index(rest, "\nresource "); next >= 0 {
		rest = rest[:next]
	}

	config := map[string]any{}
	if m := coresRe.FindStringSubmatch(rest); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			config["cores"] = v
		}
	}
	if m := memoryRe.FindStringSubmatch(rest); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			config["memory"] = v
		}
	}
	return config
}

package generator

import (
	"fmt"

	"iacforge/internal/domain/entity"
)

// TFVarsExample renders the terraform.tfvars.example companion file with the
// provider's connection variables stubbed out.
func TFVarsExample(req entity.GenerationRequest) string {
	tfvars := fmt.Sprintf(`# Terraform variables for %s
project_name = "%s"
environment  = "%s"

# Provider-specific variables
`, req.ProjectName, req.ProjectName, req.Environment)

	switch req.Provider {
	case entity.ProviderProxmox:
		tfvars += `pm_api_url  = "https://your-proxmox-host:8006/api2/json"
pm_user     = "root@pam"
pm_password = "change-me"
target_node = "your-proxmox-node"
`
	case entity.ProviderAWS:
		tfvars += `aws_region    = "us-east-1"
ami_id        = "ami-0c55b159cbfafe1d0"
key_pair_name = "your-key-pair"
`
	case entity.ProviderAzure:
		tfvars += `location       = "East US"
ssh_public_key = "ssh-rsa AAAA... you@host"
`
	case entity.ProviderGCP:
		tfvars += `project_id     = "your-gcp-project"
ssh_public_key = "ssh-rsa AAAA... you@host"
`
	}

	return tfvars
}

// DeployScript renders the plan-and-apply helper script.
func DeployScript(req entity.GenerationRequest) string {
	return fmt.Sprintf(`#!/bin/bash
# Deployment script for %[1]s

set -e

echo "Deploying %[1]s infrastructure..."

terraform init

terraform plan -var-file="terraform.tfvars"

terraform apply -var-file="terraform.tfvars" -auto-approve

echo "Deployment completed successfully!"
`, req.ProjectName)
}

// CleanupScript renders the destroy helper script.
func CleanupScript(req entity.GenerationRequest) string {
	return fmt.Sprintf(`#!/bin/bash
# Cleanup script for %[1]s

set -e

echo "Cleaning up %[1]s infrastructure..."

terraform destroy -var-file="terraform.tfvars" -auto-approve

echo "Cleanup completed successfully!"
`, req.ProjectName)
}

// Readme renders the project README shipped next to the generated code.
func Readme(req entity.GenerationRequest) string {
	return fmt.Sprintf(`# %s

Infrastructure as Code for %s using %s.

## Requirements

%s

## Generated Resources

This infrastructure creates the following resources on %s:

- Virtual machines/instances
- Networking components
- Storage resources
- Security configurations

## Prerequisites

1. %s installed
2. Access to %s environment
3. Required credentials configured

## Deployment

1. Copy `+"`terraform.tfvars.example`"+` to `+"`terraform.tfvars`"+`
2. Update variables in `+"`terraform.tfvars`"+`
3. Run deployment script:

`+"```bash"+`
chmod +x deploy.sh
./deploy.sh
`+"```"+`

## Cleanup

To remove all resources:

`+"```bash"+`
chmod +x cleanup.sh
./cleanup.sh
`+"```"+`

---
This infrastructure was generated automatically from natural language requirements.
Environment: %s
`,
		req.ProjectName, req.ProjectName, req.Format,
		req.Requirements,
		req.Provider,
		req.Format, req.Provider,
		req.Environment,
	)
}

// DeploymentInstructions renders the step-by-step operator guide.
func DeploymentInstructions(req entity.GenerationRequest) string {
	return fmt.Sprintf(`# Deployment Instructions

## Prerequisites

1. Install %s
2. Configure %s credentials
3. Ensure network access to target environment

## Step-by-step Deployment

1. **Initialize**
   `+"```bash"+`
   terraform init
   `+"```"+`

2. **Configure Variables**
   Copy `+"`terraform.tfvars.example`"+` to `+"`terraform.tfvars`"+` and update values.

3. **Plan Deployment**
   `+"```bash"+`
   terraform plan -var-file="terraform.tfvars"
   `+"```"+`

4. **Deploy Infrastructure**
   `+"```bash"+`
   terraform apply -var-file="terraform.tfvars"
   `+"```"+`

## Verification

After deployment, verify resources are created properly in your %s console.

## Troubleshooting

Common issues and solutions:
- Check credentials are properly configured
- Ensure target environment has sufficient resources
- Verify network connectivity

Generated for project: %s
Target provider: %s
Environment: %s
`,
		req.Format, req.Provider,
		req.Provider,
		req.ProjectName, req.Provider, req.Environment,
	)
}

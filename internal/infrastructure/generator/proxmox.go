package generator

import (
	"fmt"
	"strings"

	"iacforge/internal/domain/entity"
)

// ProxmoxAdapter targets self-hosted Proxmox VE via the telmate provider.
type ProxmoxAdapter struct{}

func NewProxmoxAdapter() *ProxmoxAdapter { return &ProxmoxAdapter{} }

func (a *ProxmoxAdapter) Provider() entity.Provider { return entity.ProviderProxmox }

func (a *ProxmoxAdapter) GenerateInfrastructureCode(req entity.GenerationRequest, analysis entity.AnalyzedSpecification) string {
	var b strings.Builder

	b.WriteString(`terraform {
  required_providers {
    proxmox = {
      source  = "telmate/proxmox"
      version = "2.9.14"
    }
  }
}

provider "proxmox" {
  pm_api_url      = var.pm_api_url
  pm_user         = var.pm_user
  pm_password     = var.pm_password
  pm_tls_insecure = var.pm_tls_insecure
}

`)

	b.WriteString(a.vmConfiguration(req, analysis))
	b.WriteString("\n\n")
	b.WriteString(a.networkingConfiguration(analysis))
	b.WriteString("\n\n")
	b.WriteString(a.storageConfiguration(analysis))
	b.WriteString("\n")

	return b.String()
}

func (a *ProxmoxAdapter) vmConfiguration(req entity.GenerationRequest, analysis entity.AnalyzedSpecification) string {
	return fmt.Sprintf(`resource "proxmox_vm_qemu" "main" {
  name        = "%s"
  target_node = var.target_node
  clone       = var.template_name

  cores   = %d
  sockets = 1
  memory  = %d

  boot     = "c"
  bootdisk = "scsi0"

  disk {
    size    = "%dG"
    type    = "scsi"
    storage = var.storage_pool
  }

  network {
    model  = "virtio"
    bridge = var.network_bridge
  }

  os_type = "cloud-init"

  tags = "%s"

  lifecycle {
    create_before_destroy = true
  }
}`,
		resourceName(req, "vm"),
		a.determineCores(analysis),
		a.determineMemory(analysis),
		diskSizeGB(analysis),
		tagString(commonTags(req)),
	)
}

func (a *ProxmoxAdapter) networkingConfiguration(analysis entity.AnalyzedSpecification) string {
	if !analysis.Networking.CustomNetwork {
		return "# Using default networking configuration"
	}
	return `# Custom networking configuration
resource "proxmox_vm_qemu" "load_balancer" {
  count       = var.enable_load_balancer ? 1 : 0
  name        = "${var.project_name}-lb-${var.environment}"
  target_node = var.target_node
  clone       = var.template_name

  cores  = 1
  memory = 1024

  disk {
    size    = "10G"
    type    = "scsi"
    storage = var.storage_pool
  }

  network {
    model  = "virtio"
    bridge = var.network_bridge
  }

  tags = "load-balancer,${var.environment}"
}`
}

func (a *ProxmoxAdapter) storageConfiguration(analysis entity.AnalyzedSpecification) string {
	if !analysis.Storage.AdditionalStorage {
		return "# Using default storage configuration"
	}
	return `# Additional storage disk
resource "proxmox_vm_qemu" "storage_vm" {
  count       = var.enable_additional_storage ? 1 : 0
  name        = "${var.project_name}-storage-${var.environment}"
  target_node = var.target_node
  clone       = var.template_name

  cores  = 2
  memory = 4096

  disk {
    size    = "20G"
    type    = "scsi"
    storage = var.storage_pool
  }

  disk {
    size    = "100G"
    type    = "scsi"
    storage = var.storage_pool
  }

  network {
    model  = "virtio"
    bridge = var.network_bridge
  }

  tags = "storage,${var.environment}"
}`
}

func (a *ProxmoxAdapter) determineCores(analysis entity.AnalyzedSpecification) int {
	switch {
	case analysis.Performance.HighCPU || analysis.EstimatedComplexity > 8:
		return 4
	case analysis.EstimatedComplexity > 5:
		return 2
	default:
		return 1
	}
}

// determineMemory returns the allocation in MB.
func (a *ProxmoxAdapter) determineMemory(analysis entity.AnalyzedSpecification) int {
	switch {
	case analysis.Performance.HighMemory || analysis.EstimatedComplexity > 8:
		return 8192
	case analysis.EstimatedComplexity > 5:
		return 4096
	default:
		return 2048
	}
}

func (a *ProxmoxAdapter) GenerateVariablesFile(req entity.GenerationRequest) string {
	return fmt.Sprintf(`# Proxmox connection variables
variable "pm_api_url" {
  description = "Proxmox API URL"
  type        = string
}

variable "pm_user" {
  description = "Proxmox user"
  type        = string
  default     = "root@pam"
}

variable "pm_password" {
  description = "Proxmox password"
  type        = string
  sensitive   = true
}

variable "pm_tls_insecure" {
  description = "Allow insecure TLS connections"
  type        = bool
  default     = true
}

# Infrastructure variables
variable "project_name" {
  description = "Name of the project"
  type        = string
  default     = "%s"
}

variable "environment" {
  description = "Environment (development, staging, production)"
  type        = string
  default     = "%s"
}

variable "target_node" {
  description = "Proxmox node to deploy to"
  type        = string
}

variable "template_name" {
  description = "VM template name"
  type        = string
  default     = "ubuntu-22.04-template"
}

variable "storage_pool" {
  description = "Storage pool for VM disks"
  type        = string
  default     = "local-lvm"
}

variable "network_bridge" {
  description = "Network bridge for VMs"
  type        = string
  default     = "vmbr0"
}

# Optional features
variable "enable_load_balancer" {
  description = "Enable load balancer VM"
  type        = bool
  default     = false
}

variable "enable_additional_storage" {
  description = "Enable additional storage VM"
  type        = bool
  default     = false
}
`, req.ProjectName, req.Environment)
}

func (a *ProxmoxAdapter) GenerateOutputsFile(req entity.GenerationRequest) string {
	return `# VM information
output "vm_id" {
  description = "ID of the created VM"
  value       = proxmox_vm_qemu.main.vmid
}

output "vm_name" {
  description = "Name of the created VM"
  value       = proxmox_vm_qemu.main.name
}

output "vm_ip_address" {
  description = "IP address of the VM"
  value       = proxmox_vm_qemu.main.default_ipv4_address
}

output "vm_ssh_host" {
  description = "SSH connection string"
  value       = "${proxmox_vm_qemu.main.ssh_user}@${proxmox_vm_qemu.main.default_ipv4_address}"
}

# Resource information
output "resource_summary" {
  description = "Summary of created resources"
  value = {
    project_name = var.project_name
    environment  = var.environment
    vm_cores     = proxmox_vm_qemu.main.cores
    vm_memory    = proxmox_vm_qemu.main.memory
    vm_storage   = proxmox_vm_qemu.main.disk[0].size
  }
}
`
}

func (a *ProxmoxAdapter) ExtractResources(code string) []entity.GeneratedResource {
	return extractResources(entity.ProviderProxmox, code)
}

// EstimateMonthlyCost is always zero: Proxmox is self-hosted, so there is no
// metered cloud bill to estimate.
func (a *ProxmoxAdapter) EstimateMonthlyCost(resources []entity.GeneratedResource) float64 {
	return priceResources(entity.ProviderProxmox, resources)
}

package generator

import (
	"fmt"
	"strings"

	"iacforge/internal/domain/entity"
)

// AzureAdapter targets Azure Linux VMs via the hashicorp/azurerm provider.
type AzureAdapter struct{}

func NewAzureAdapter() *AzureAdapter { return &AzureAdapter{} }

func (a *AzureAdapter) Provider() entity.Provider { return entity.ProviderAzure }

var azureVMSizes = machineTypes{
	tierSmall:  "Standard_B1s",
	tierMedium: "Standard_B2s",
	tierMemory: "Standard_E2s_v3",
	tierLarge:  "Standard_D2s_v3",
}

func (a *AzureAdapter) GenerateInfrastructureCode(req entity.GenerationRequest, analysis entity.AnalyzedSpecification) string {
	var b strings.Builder

	b.WriteString(`terraform {
  required_providers {
    azurerm = {
      source  = "hashicorp/azurerm"
      version = "~> 3.0"
    }
  }
}

provider "azurerm" {
  features {}
}

`)

	b.WriteString(a.resourceGroupConfiguration(req))
	b.WriteString("\n\n")
	b.WriteString(a.networkConfiguration(req))
	b.WriteString("\n\n")
	b.WriteString(a.vmConfiguration(req, analysis))
	b.WriteString("\n")

	return b.String()
}

func (a *AzureAdapter) resourceGroupConfiguration(req entity.GenerationRequest) string {
	return fmt.Sprintf(`# Resource Group
resource "azurerm_resource_group" "main" {
  name     = "rg-%s-%s"
  location = var.location

  tags = var.common_tags
}`, req.ProjectName, req.Environment)
}

func (a *AzureAdapter) networkConfiguration(req entity.GenerationRequest) string {
	return fmt.Sprintf(`# Virtual Network
resource "azurerm_virtual_network" "main" {
  name                = "vnet-%[1]s"
  address_space       = ["10.0.0.0/16"]
  location            = azurerm_resource_group.main.location
  resource_group_name = azurerm_resource_group.main.name

  tags = var.common_tags
}

# Subnet
resource "azurerm_subnet" "internal" {
  name                 = "subnet-internal"
  resource_group_name  = azurerm_resource_group.main.name
  virtual_network_name = azurerm_virtual_network.main.name
  address_prefixes     = ["10.0.2.0/24"]
}

# Network Security Group
resource "azurerm_network_security_group" "main" {
  name                = "nsg-%[1]s"
  location            = azurerm_resource_group.main.location
  resource_group_name = azurerm_resource_group.main.name

  security_rule {
    name                       = "SSH"
    priority                   = 1001
    direction                  = "Inbound"
    access                     = "Allow"
    protocol                   = "Tcp"
    source_port_range          = "*"
    destination_port_range     = "22"
    source_address_prefix      = "*"
    destination_address_prefix = "*"
  }

  security_rule {
    name                       = "HTTP"
    priority                   = 1002
    direction                  = "Inbound"
    access                     = "Allow"
    protocol                   = "Tcp"
    source_port_range          = "*"
    destination_port_range     = "80"
    source_address_prefix      = "*"
    destination_address_prefix = "*"
  }

  security_rule {
    name                       = "HTTPS"
    priority                   = 1003
    direction                  = "Inbound"
    access                     = "Allow"
    protocol                   = "Tcp"
    source_port_range          = "*"
    destination_port_range     = "443"
    source_address_prefix      = "*"
    destination_address_prefix = "*"
  }

  tags = var.common_tags
}`, req.ProjectName)
}

func (a *AzureAdapter) vmConfiguration(req entity.GenerationRequest, analysis entity.AnalyzedSpecification) string {
	return fmt.Sprintf(`# Public IP
resource "azurerm_public_ip" "main" {
  name                = "pip-%[1]s"
  resource_group_name = azurerm_resource_group.main.name
  location            = azurerm_resource_group.main.location
  allocation_method   = "Dynamic"

  tags = var.common_tags
}

# Network Interface
resource "azurerm_network_interface" "main" {
  name                = "nic-%[1]s"
  location            = azurerm_resource_group.main.location
  resource_group_name = azurerm_resource_group.main.name

  ip_configuration {
    name                          = "internal"
    subnet_id                     = azurerm_subnet.internal.id
    private_ip_address_allocation = "Dynamic"
    public_ip_address_id          = azurerm_public_ip.main.id
  }

  tags = var.common_tags
}

# Associate Network Security Group to Network Interface
resource "azurerm_network_interface_security_group_association" "main" {
  network_interface_id      = azurerm_network_interface.main.id
  network_security_group_id = azurerm_network_security_group.main.id
}

# Virtual Machine
resource "azurerm_linux_virtual_machine" "main" {
  name                = "vm-%[1]s"
  resource_group_name = azurerm_resource_group.main.name
  location            = azurerm_resource_group.main.location
  size                = "%[2]s"
  admin_username      = var.admin_username

  disable_password_authentication = true

  network_interface_ids = [
    azurerm_network_interface.main.id,
  ]

  admin_ssh_key {
    username   = var.admin_username
    public_key = var.ssh_public_key
  }

  os_disk {
    caching              = "ReadWrite"
    storage_account_type = "Premium_LRS"
    disk_size_gb         = %[3]d
  }

  source_image_reference {
    publisher = "Canonical"
    offer     = "0001-com-ubuntu-server-jammy"
    sku       = "22_04-lts-gen2"
    version   = "latest"
  }

  tags = var.common_tags
}`, req.ProjectName, azureVMSizes.forAnalysis(analysis), diskSizeGB(analysis))
}

func (a *AzureAdapter) GenerateVariablesFile(req entity.GenerationRequest) string {
	return fmt.Sprintf(`# Azure Configuration
variable "location" {
  description = "Azure region"
  type        = string
  default     = "East US"
}

# Project Configuration
variable "project_name" {
  description = "Name of the project"
  type        = string
  default     = "%[1]s"
}

variable "environment" {
  description = "Environment"
  type        = string
  default     = "%[2]s"
}

variable "common_tags" {
  description = "Common tags for all resources"
  type        = map(string)
  default = {
    Project     = "%[1]s"
    Environment = "%[2]s"
    ManagedBy   = "terraform"
  }
}

# VM Configuration
variable "admin_username" {
  description = "Admin username for the VM"
  type        = string
  default     = "azureuser"
}

variable "ssh_public_key" {
  description = "SSH public key for VM access"
  type        = string
}
`, req.ProjectName, req.Environment)
}

func (a *AzureAdapter) GenerateOutputsFile(req entity.GenerationRequest) string {
	return `# VM Information
output "vm_id" {
  description = "ID of the created VM"
  value       = azurerm_linux_virtual_machine.main.id
}

output "vm_name" {
  description = "Name of the created VM"
  value       = azurerm_linux_virtual_machine.main.name
}

output "public_ip_address" {
  description = "Public IP address of the VM"
  value       = azurerm_public_ip.main.ip_address
}

output "private_ip_address" {
  description = "Private IP address of the VM"
  value       = azurerm_network_interface.main.private_ip_address
}

output "ssh_connection" {
  description = "SSH connection command"
  value       = "ssh ${var.admin_username}@${azurerm_public_ip.main.ip_address}"
}

output "resource_group_name" {
  description = "Name of the resource group"
  value       = azurerm_resource_group.main.name
}

# Resource Summary
output "resource_summary" {
  description = "Summary of created resources"
  value = {
    project_name   = var.project_name
    environment    = var.environment
    location       = var.location
    vm_size        = azurerm_linux_virtual_machine.main.size
    vm_id          = azurerm_linux_virtual_machine.main.id
    resource_group = azurerm_resource_group.main.name
  }
}
`
}

func (a *AzureAdapter) ExtractResources(code string) []entity.GeneratedResource {
	return extractResources(entity.ProviderAzure, code)
}

func (a *AzureAdapter) EstimateMonthlyCost(resources []entity.GeneratedResource) float64 {
	return priceResources(entity.ProviderAzure, resources)
}

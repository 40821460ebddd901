package generator

import (
	"fmt"
	"strings"

	"iacforge/internal/domain/entity"
)

// GCPAdapter targets Compute Engine via the hashicorp/google provider.
type GCPAdapter struct{}

func NewGCPAdapter() *GCPAdapter { return &GCPAdapter{} }

func (a *GCPAdapter) Provider() entity.Provider { return entity.ProviderGCP }

var gcpMachineTypes = machineTypes{
	tierSmall:  "e2-micro",
	tierMedium: "e2-medium",
	tierMemory: "n2-highmem-2",
	tierLarge:  "n2-standard-2",
}

func (a *GCPAdapter) GenerateInfrastructureCode(req entity.GenerationRequest, analysis entity.AnalyzedSpecification) string {
	var b strings.Builder

	b.WriteString(`terraform {
  required_providers {
    google = {
      source  = "hashicorp/google"
      version = "~> 4.0"
    }
  }
}

provider "google" {
  project = var.project_id
  region  = var.region
  zone    = var.zone
}

`)

	b.WriteString(a.networkConfiguration(req, analysis))
	b.WriteString("\n\n")
	b.WriteString(a.firewallConfiguration(req))
	b.WriteString("\n\n")
	b.WriteString(a.instanceConfiguration(req, analysis))
	b.WriteString("\n")

	return b.String()
}

func (a *GCPAdapter) networkConfiguration(req entity.GenerationRequest, analysis entity.AnalyzedSpecification) string {
	if !analysis.Networking.CustomNetwork {
		return "# Using default network"
	}
	return fmt.Sprintf(`# VPC Network
resource "google_compute_network" "vpc_network" {
  name                    = "%[1]s-network"
  auto_create_subnetworks = false
}

# Subnet
resource "google_compute_subnetwork" "subnet" {
  name          = "%[1]s-subnet"
  ip_cidr_range = "10.0.1.0/24"
  region        = var.region
  network       = google_compute_network.vpc_network.id
}`, req.ProjectName)
}

func (a *GCPAdapter) firewallConfiguration(req entity.GenerationRequest) string {
	return fmt.Sprintf(`# Firewall rule for SSH
resource "google_compute_firewall" "ssh" {
  name    = "%[1]s-allow-ssh"
  network = var.use_default_network ? "default" : google_compute_network.vpc_network.name

  allow {
    protocol = "tcp"
    ports    = ["22"]
  }

  source_ranges = ["0.0.0.0/0"]
  target_tags   = ["%[1]s"]
}

# Firewall rule for HTTP
resource "google_compute_firewall" "http" {
  name    = "%[1]s-allow-http"
  network = var.use_default_network ? "default" : google_compute_network.vpc_network.name

  allow {
    protocol = "tcp"
    ports    = ["80", "443"]
  }

  source_ranges = ["0.0.0.0/0"]
  target_tags   = ["%[1]s"]
}`, req.ProjectName)
}

func (a *GCPAdapter) instanceConfiguration(req entity.GenerationRequest, analysis entity.AnalyzedSpecification) string {
	return fmt.Sprintf(`# Compute Instance
resource "google_compute_instance" "main" {
  name         = "%[1]s-instance"
  machine_type = "%[2]s"
  zone         = var.zone

  tags = ["%[1]s", var.environment]

  boot_disk {
    initialize_params {
      image = var.image
      size  = %[3]d
      type  = "pd-standard"
    }
  }

  network_interface {
    network    = var.use_default_network ? "default" : google_compute_network.vpc_network.name
    subnetwork = var.use_default_network ? null : google_compute_subnetwork.subnet.name

    access_config {
      # Ephemeral public IP
    }
  }

  metadata = {
    ssh-keys = "${var.ssh_user}:${var.ssh_public_key}"
  }

  metadata_startup_script = var.startup_script

  service_account {
    email  = var.service_account_email
    scopes = ["cloud-platform"]
  }

  labels = {
    project     = "%[1]s"
    environment = var.environment
    managed-by  = "terraform"
  }
}`, req.ProjectName, gcpMachineTypes.forAnalysis(analysis), diskSizeGB(analysis))
}

func (a *GCPAdapter) GenerateVariablesFile(req entity.GenerationRequest) string {
	return fmt.Sprintf(`# GCP Configuration
variable "project_id" {
  description = "GCP Project ID"
  type        = string
}

variable "region" {
  description = "GCP region"
  type        = string
  default     = "us-central1"
}

variable "zone" {
  description = "GCP zone"
  type        = string
  default     = "us-central1-a"
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

# Instance Configuration
variable "image" {
  description = "Boot disk image"
  type        = string
  default     = "debian-cloud/debian-11"
}

variable "ssh_user" {
  description = "SSH username"
  type        = string
  default     = "gcp-user"
}

variable "ssh_public_key" {
  description = "SSH public key"
  type        = string
}

variable "startup_script" {
  description = "Startup script for the instance"
  type        = string
  default     = ""
}

variable "service_account_email" {
  description = "Service account email"
  type        = string
  default     = null
}

# Networking Configuration
variable "use_default_network" {
  description = "Use default network instead of creating custom VPC"
  type        = bool
  default     = true
}
`, req.ProjectName, req.Environment)
}

func (a *GCPAdapter) GenerateOutputsFile(req entity.GenerationRequest) string {
	return `# Instance Information
output "instance_id" {
  description = "ID of the compute instance"
  value       = google_compute_instance.main.id
}

output "instance_name" {
  description = "Name of the compute instance"
  value       = google_compute_instance.main.name
}

output "internal_ip" {
  description = "Internal IP address of the instance"
  value       = google_compute_instance.main.network_interface[0].network_ip
}

output "external_ip" {
  description = "External IP address of the instance"
  value       = google_compute_instance.main.network_interface[0].access_config[0].nat_ip
}

output "ssh_connection" {
  description = "SSH connection command"
  value       = "gcloud compute ssh --zone=${var.zone} ${var.ssh_user}@${google_compute_instance.main.name} --project=${var.project_id}"
}

# Network Information
output "network_name" {
  description = "Name of the VPC network"
  value       = var.use_default_network ? "default" : google_compute_network.vpc_network.name
}

# Resource Summary
output "resource_summary" {
  description = "Summary of created resources"
  value = {
    project_id   = var.project_id
    project_name = var.project_name
    environment  = var.environment
    region       = var.region
    zone         = var.zone
    machine_type = google_compute_instance.main.machine_type
    instance_id  = google_compute_instance.main.id
  }
}
`
}

func (a *GCPAdapter) ExtractResources(code string) []entity.GeneratedResource {
	return extractResources(entity.ProviderGCP, code)
}

func (a *GCPAdapter) EstimateMonthlyCost(resources []entity.GeneratedResource) float64 {
	return priceResources(entity.ProviderGCP, resources)
}

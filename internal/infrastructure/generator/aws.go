package generator

import (
	"fmt"
	"strings"

	"iacforge/internal/domain/entity"
)

// AWSAdapter targets EC2 via the hashicorp/aws provider.
type AWSAdapter struct{}

func NewAWSAdapter() *AWSAdapter { return &AWSAdapter{} }

func (a *AWSAdapter) Provider() entity.Provider { return entity.ProviderAWS }

var awsInstanceTypes = machineTypes{
	tierSmall:  "t3.micro",
	tierMedium: "t3.medium",
	tierMemory: "r5.large",
	tierLarge:  "c5.large",
}

func (a *AWSAdapter) GenerateInfrastructureCode(req entity.GenerationRequest, analysis entity.AnalyzedSpecification) string {
	var b strings.Builder

	b.WriteString(`terraform {
  required_providers {
    aws = {
      source  = "hashicorp/aws"
      version = "~> 5.0"
    }
  }
}

provider "aws" {
  region = var.aws_region
}

`)

	b.WriteString(a.vpcConfiguration(req, analysis))
	b.WriteString("\n\n")
	b.WriteString(a.securityGroupConfiguration(req))
	b.WriteString("\n\n")
	b.WriteString(a.instanceConfiguration(req, analysis))
	b.WriteString("\n")

	return b.String()
}

func (a *AWSAdapter) vpcConfiguration(req entity.GenerationRequest, analysis entity.AnalyzedSpecification) string {
	if !analysis.Networking.CustomNetwork {
		return "# Using default VPC"
	}
	return fmt.Sprintf(`# VPC Configuration
resource "aws_vpc" "main" {
  cidr_block           = var.vpc_cidr
  enable_dns_hostnames = true
  enable_dns_support   = true

  tags = merge(var.common_tags, {
    Name = "%[1]s-vpc"
  })
}

resource "aws_subnet" "public" {
  vpc_id                  = aws_vpc.main.id
  cidr_block              = var.public_subnet_cidr
  availability_zone       = var.availability_zone
  map_public_ip_on_launch = true

  tags = merge(var.common_tags, {
    Name = "%[1]s-public-subnet"
  })
}

resource "aws_internet_gateway" "main" {
  vpc_id = aws_vpc.main.id

  tags = merge(var.common_tags, {
    Name = "%[1]s-igw"
  })
}

resource "aws_route_table" "public" {
  vpc_id = aws_vpc.main.id

  route {
    cidr_block = "0.0.0.0/0"
    gateway_id = aws_internet_gateway.main.id
  }

  tags = merge(var.common_tags, {
    Name = "%[1]s-public-rt"
  })
}

resource "aws_route_table_association" "public" {
  subnet_id      = aws_subnet.public.id
  route_table_id = aws_route_table.public.id
}`, req.ProjectName)
}

func (a *AWSAdapter) securityGroupConfiguration(req entity.GenerationRequest) string {
	return fmt.Sprintf(`# Security Group
resource "aws_security_group" "main" {
  name_prefix = "%[1]s-"
  vpc_id      = var.use_default_vpc ? null : aws_vpc.main.id

  ingress {
    from_port   = 22
    to_port     = 22
    protocol    = "tcp"
    cidr_blocks = ["0.0.0.0/0"]
  }

  ingress {
    from_port   = 80
    to_port     = 80
    protocol    = "tcp"
    cidr_blocks = ["0.0.0.0/0"]
  }

  ingress {
    from_port   = 443
    to_port     = 443
    protocol    = "tcp"
    cidr_blocks = ["0.0.0.0/0"]
  }

  egress {
    from_port   = 0
    to_port     = 0
    protocol    = "-1"
    cidr_blocks = ["0.0.0.0/0"]
  }

  tags = merge(var.common_tags, {
    Name = "%[1]s-sg"
  })
}`, req.ProjectName)
}

func (a *AWSAdapter) instanceConfiguration(req entity.GenerationRequest, analysis entity.AnalyzedSpecification) string {
	return fmt.Sprintf(`# EC2 Instance
resource "aws_instance" "main" {
  ami                    = var.ami_id
  instance_type          = "%s"
  key_name               = var.key_pair_name
  vpc_security_group_ids = [aws_security_group.main.id]
  subnet_id              = var.use_default_vpc ? null : aws_subnet.public.id

  root_block_device {
    volume_type = "gp3"
    volume_size = var.root_volume_size
    encrypted   = true
  }

  tags = merge(var.common_tags, {
    Name = "%s-instance"
  })
}`, awsInstanceTypes.forAnalysis(analysis), req.ProjectName)
}

func (a *AWSAdapter) GenerateVariablesFile(req entity.GenerationRequest) string {
	return fmt.Sprintf(`# AWS Configuration
variable "aws_region" {
  description = "AWS region"
  type        = string
  default     = "us-east-1"
}

variable "availability_zone" {
  description = "Availability zone"
  type        = string
  default     = "us-east-1a"
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

# EC2 Configuration
variable "ami_id" {
  description = "AMI ID for EC2 instance"
  type        = string
}

variable "key_pair_name" {
  description = "EC2 Key Pair name"
  type        = string
}

variable "root_volume_size" {
  description = "Root volume size in GB"
  type        = number
  default     = 20
}

# Networking Configuration
variable "use_default_vpc" {
  description = "Use default VPC instead of creating new one"
  type        = bool
  default     = true
}

variable "vpc_cidr" {
  description = "CIDR block for VPC"
  type        = string
  default     = "10.0.0.0/16"
}

variable "public_subnet_cidr" {
  description = "CIDR block for public subnet"
  type        = string
  default     = "10.0.1.0/24"
}
`, req.ProjectName, req.Environment)
}

func (a *AWSAdapter) GenerateOutputsFile(req entity.GenerationRequest) string {
	return `# Instance Information
output "instance_id" {
  description = "ID of the EC2 instance"
  value       = aws_instance.main.id
}

output "instance_public_ip" {
  description = "Public IP address of the EC2 instance"
  value       = aws_instance.main.public_ip
}

output "instance_private_ip" {
  description = "Private IP address of the EC2 instance"
  value       = aws_instance.main.private_ip
}

output "instance_dns" {
  description = "Public DNS name of the EC2 instance"
  value       = aws_instance.main.public_dns
}

output "ssh_connection" {
  description = "SSH connection command"
  value       = "ssh -i ${var.key_pair_name}.pem ubuntu@${aws_instance.main.public_ip}"
}

# Resource Summary
output "resource_summary" {
  description = "Summary of created resources"
  value = {
    project_name  = var.project_name
    environment   = var.environment
    region        = var.aws_region
    instance_type = aws_instance.main.instance_type
    instance_id   = aws_instance.main.id
    public_ip     = aws_instance.main.public_ip
  }
}
`
}

func (a *AWSAdapter) ExtractResources(code string) []entity.GeneratedResource {
	return extractResources(entity.ProviderAWS, code)
}

func (a *AWSAdapter) EstimateMonthlyCost(resources []entity.GeneratedResource) float64 {
	return priceResources(entity.ProviderAWS, resources)
}

// Package domain contains the core domain model of the module framework:
// bundles, their revisions, capabilities, requirements and wirings.
package domain

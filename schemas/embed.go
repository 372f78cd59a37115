// Package schemas embeds the JSON Schemas for the catalog input and the vault output.
package schemas

import _ "embed"

// Catalog is the shape of a target catalog document.
//
//go:embed catalog.schema.json
var Catalog []byte

// BenefitRecords is the shape of one issuer's vault file.
//
//go:embed benefit_record.schema.json
var BenefitRecords []byte

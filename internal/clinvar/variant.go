// Package clinvar provides ClinVar variant annotations for track layout.
package clinvar

import (
	"fmt"
	"strings"
)

// Consequence terms that drive marker and filter categories.
const (
	ConsequenceFrameshift        = "frameshift_variant"
	ConsequenceStopGained        = "stop_gained"
	ConsequenceSpliceAcceptor    = "splice_acceptor_variant"
	ConsequenceSpliceDonor       = "splice_donor_variant"
	ConsequenceTranscriptAblated = "transcript_ablation"
	ConsequenceMissense          = "missense_variant"
	ConsequenceInframeInsertion  = "inframe_insertion"
	ConsequenceInframeDeletion   = "inframe_deletion"
	ConsequenceStopLost          = "stop_lost"
	ConsequenceStartLost         = "start_lost"
	ConsequenceProteinAltering   = "protein_altering_variant"
	ConsequenceSpliceRegion      = "splice_region_variant"
	ConsequenceSynonymous        = "synonymous_variant"
)

// Variant is a ClinVar variant as delivered by the browser API.
type Variant struct {
	ID                   string `json:"variant_id"`           // e.g. 1-55051215-G-GA
	ClinvarVariationID   string `json:"clinvar_variation_id"` // ClinVar accession
	Chrom                string `json:"chrom"`
	Pos                  int64  `json:"pos"`
	HGVSc                string `json:"hgvsc,omitempty"`
	HGVSp                string `json:"hgvsp,omitempty"` // e.g. p.Leu2GlufsTer5
	MajorConsequence     string `json:"major_consequence,omitempty"`
	ClinicalSignificance string `json:"clinical_significance"`
	TranscriptID         string `json:"transcript_id,omitempty"`
	GoldStars            int    `json:"gold_stars"`
	ReviewStatus         string `json:"review_status,omitempty"`
}

// ValidationError reports a variant rejected at load time.
type ValidationError struct {
	VariantID string
	Field     string
	Reason    string
}

func (e *ValidationError) Error() string {
	if e.VariantID == "" {
		return fmt.Sprintf("invalid variant: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid variant %s: %s %s", e.VariantID, e.Field, e.Reason)
}

// Validate rejects variants missing fields the layout depends on.
func (v *Variant) Validate() error {
	if v.ID == "" {
		return &ValidationError{Field: "variant_id", Reason: "is required"}
	}
	if v.Pos <= 0 {
		return &ValidationError{VariantID: v.ID, Field: "pos", Reason: fmt.Sprintf("%d is not a positive position", v.Pos)}
	}
	if v.ClinicalSignificance == "" {
		return &ValidationError{VariantID: v.ID, Field: "clinical_significance", Reason: "is required"}
	}
	return nil
}

// NormalizeChrom returns the variant's chromosome without "chr" prefix.
func (v *Variant) NormalizeChrom() string {
	return NormalizeChrom(v.Chrom)
}

// NormalizeChrom strips a "chr" prefix from a chromosome name.
func NormalizeChrom(chrom string) string {
	if len(chrom) > 3 && chrom[:3] == "chr" {
		return chrom[3:]
	}
	return chrom
}

// FillChromFromID sets Chrom from a chrom-pos-ref-alt variant ID when absent.
func (v *Variant) FillChromFromID() {
	if v.Chrom != "" {
		return
	}
	if chrom, _, ok := strings.Cut(v.ID, "-"); ok {
		v.Chrom = chrom
	}
}

// IsFrameshift returns true for frameshift variants.
func (v *Variant) IsFrameshift() bool {
	return v.MajorConsequence == ConsequenceFrameshift
}

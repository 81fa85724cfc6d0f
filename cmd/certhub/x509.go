package main

import (
	"context"
	"crypto/x509"
	"time"

	"github.com/spf13/cobra"
	"github.com/whitekid/goxp/fx"

	"certhub/certmanager/parser"
	"certhub/pkg/helper"
	"certhub/pkg/helper/x509x"
)

var x509cmd *cobra.Command

func init() {
	x509cmd = &cobra.Command{
		Use:   "x509",
		Short: "x509 utility commands",
	}
	rootCmd.AddCommand(x509cmd)
}

func init() {
	cmd := &cobra.Command{
		Use: "cert",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "info cert",
		Short: "show x509 certificate as certhub stores it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, filename := range args {
				if err := certInfo(cmd.Context(), filename); err != nil {
					return err
				}
			}
			return nil
		},
	})

	x509cmd.AddCommand(cmd)
}

type certificateInfo struct {
	CommonName              string    `json:"commonName" yaml:"commonName"`
	SubjectDN               string    `json:"subjectDn" yaml:"subjectDn"`
	IssuerDN                string    `json:"issuerDn" yaml:"issuerDn"`
	SerialNumber            string    `json:"serialNumber" yaml:"serialNumber"`
	Fingerprint             string    `json:"fingerprint" yaml:"fingerprint"`
	NotBefore               time.Time `json:"notBefore" yaml:"notBefore"`
	NotAfter                time.Time `json:"notAfter" yaml:"notAfter"`
	Status                  string    `json:"status" yaml:"status"`
	PublicKeyAlgorithm      string    `json:"publicKeyAlgorithm" yaml:"publicKeyAlgorithm"`
	KeySize                 int       `json:"keySize" yaml:"keySize"`
	SignatureAlgorithm      string    `json:"signatureAlgorithm" yaml:"signatureAlgorithm"`
	KeyUsage                []string  `json:"keyUsage,omitempty" yaml:"keyUsage,omitempty"`
	ExtendedKeyUsage        []string  `json:"extendedKeyUsage,omitempty" yaml:"extendedKeyUsage,omitempty"`
	SubjectAlternativeNames []string  `json:"subjectAlternativeNames,omitempty" yaml:"subjectAlternativeNames,omitempty"`
	BasicConstraints        string    `json:"basicConstraints,omitempty" yaml:"basicConstraints,omitempty"`
	IssuingURLs             []string  `json:"issuingUrls,omitempty" yaml:"issuingUrls,omitempty"`
	SelfSigned              bool      `json:"selfSigned" yaml:"selfSigned"`
}

// certInfo show certificate fields extracted for inventory
// PEM file may have multiple certificates
func certInfo(ctx context.Context, filename string) error {
	data, err := helper.ReadFileOrURL(ctx, filename)
	if err != nil {
		return err
	}

	contents := [][]byte{data}
	if x509x.IsPEM(data) {
		certs, err := x509x.ParseCertificateChain(data)
		if err != nil {
			return err
		}
		contents = fx.Map(certs, func(c *x509.Certificate) []byte { return c.Raw })
	}

	infos := make([]*certificateInfo, 0, len(contents))
	for _, content := range contents {
		parsed, err := parser.Parse(content)
		if err != nil {
			return err
		}

		r := parsed.Record
		infos = append(infos, &certificateInfo{
			CommonName:              r.CommonName,
			SubjectDN:               r.SubjectDN,
			IssuerDN:                r.IssuerDN,
			SerialNumber:            r.SerialNumber,
			Fingerprint:             r.Fingerprint,
			NotBefore:               r.NotBefore,
			NotAfter:                r.NotAfter,
			Status:                  string(r.Status),
			PublicKeyAlgorithm:      r.PublicKeyAlgorithm,
			KeySize:                 r.KeySize,
			SignatureAlgorithm:      r.SignatureAlgorithm,
			KeyUsage:                r.KeyUsage,
			ExtendedKeyUsage:        r.ExtendedKeyUsage,
			SubjectAlternativeNames: r.SubjectAlternativeNames,
			BasicConstraints:        r.BasicConstraints,
			IssuingURLs:             parsed.IssuingURLs,
			SelfSigned:              r.SelfSigned(),
		})
	}

	return write(infos)
}

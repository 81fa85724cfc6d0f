package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/whitekid/goxp/log"

	"certhub/certmanager"
	"certhub/client"
	v1 "certhub/client/v1"
	"certhub/config"
	"certhub/pkg/helper"
	"certhub/pkg/helper/x509x"
)

func newClient() *v1.Client { return client.New(config.ServerEndpoint()).V1() }

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "import file|url...",
		Short: "import certificates; PEM file may have multiple certificates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				if err := importCertificates(cmd.Context(), arg); err != nil {
					return err
				}
			}
			return nil
		},
	})

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "link unlinked certificates to their issuers",
		RunE: func(cmd *cobra.Command, args []string) error {
			local, _ := cmd.Flags().GetBool("local")
			linked, err := sweepIssuers(cmd.Context(), local)
			if err != nil {
				return err
			}

			return write(&v1.SweepResponse{Linked: linked})
		},
	}
	sweepCmd.Flags().Bool("local", false, "run against database directly, not through server")
	rootCmd.AddCommand(sweepCmd)
}

func sweepIssuers(ctx context.Context, local bool) (int, error) {
	if !local {
		return newClient().Certificates().SweepIssuers(ctx)
	}

	store, err := certmanager.SQLStore(config.DBURL())
	if err != nil {
		return 0, err
	}
	defer store.Close()

	return certmanager.New(store, nil, certmanager.HTTPConnector(), certmanager.ChainFetcher()).SweepIssuers(ctx)
}

type importResult struct {
	Source     string `json:"source" yaml:"source"`
	UUID       string `json:"uuid" yaml:"uuid"`
	CommonName string `json:"commonName" yaml:"commonName"`
	Created    bool   `json:"created" yaml:"created"`
}

func importCertificates(ctx context.Context, source string) error {
	data, err := helper.ReadFileOrURL(ctx, source)
	if err != nil {
		return err
	}

	var contents [][]byte
	if x509x.IsPEM(data) {
		certs, err := x509x.ParseCertificateChain(data)
		if err != nil {
			return errors.Wrapf(err, "fail to parse %s", source)
		}
		for _, cert := range certs {
			contents = append(contents, cert.Raw)
		}
	} else {
		contents = [][]byte{data}
	}

	svc := newClient().Certificates()
	results := []importResult{}
	for _, content := range contents {
		res, err := svc.Import(ctx, content)
		if err != nil {
			return errors.Wrapf(err, "fail to import %s", source)
		}

		log.Debugf("imported %s: uuid=%s, created=%v", source, res.Certificate.UUID, res.Created)
		results = append(results, importResult{
			Source:     source,
			UUID:       res.Certificate.UUID,
			CommonName: res.Certificate.CommonName,
			Created:    res.Created,
		})
	}

	return write(results)
}

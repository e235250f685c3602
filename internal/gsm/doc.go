// Package gsm enriches device records with cellular network capabilities.
//
// Three tiers are consulted in order for every device name:
//
//  1. SpecsClient, the remote specifications API (only when an API key is
//     configured), fronted by a bounded LRU cache with coalesced loads
//  2. Dataset, a reference CSV loaded once at startup
//  3. the INFO UNAVAILABLE placeholder
//
// Enrichment never fails a request. Remote faults and timeouts look exactly
// like a device the API does not know, and fall through to the dataset.
//
// # Usage
//
//	dataset, err := gsm.LoadDataset(cfg.Enrichment.DatasetPath)
//	if err != nil {
//	    return err
//	}
//
//	var opts []gsm.ResolverOption
//	if cfg.HasAPIKey() {
//	    client, err := gsm.NewSpecsClient(gsm.SpecsClientConfig{...})
//	    if err != nil {
//	        return err
//	    }
//	    opts = append(opts, gsm.WithRemote(client))
//	}
//	resolver := gsm.NewResolver(dataset, opts...)
//
//	enriched := resolver.Enrich(ctx, dev)
package gsm

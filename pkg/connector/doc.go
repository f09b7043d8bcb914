// Package connector holds the two ends of a sync run and the pieces they share.
//
// # Architecture Overview
//
// The connector package is organized into several sub-packages:
//
//   - source/magento: Talks to a Magento 1 store over its RPC web services.
//     A Gateway owns the session and retries faults; a Client per API
//     generation builds the calls; a Repository caches detail lookups and
//     lists records by date range.
//
//   - destination/woowup: Talks to the WoowUp REST API. The Client maps every
//     endpoint; the Reconciler decides between create and update and counts
//     the outcome of every record.
//
//   - base: Retry policy with exponential delays and the progress reporter
//     used by long imports.
//
//   - registry: Filter plugins that customize the mapping between both ends.
//     Filters self-register during initialization and are enabled by name.
//
// # Example Usage
//
//	gateway := magento.NewGateway(transport, user, key, base.DefaultRetryPolicy())
//	client, err := magento.NewClient(magento.VersionV2, gateway)
//	if err != nil {
//		log.Fatal(err)
//	}
//	repo := magento.NewRepository(client, logger)
//
//	api := woowup.NewClient(baseURL, apiKey, httpClient, logger)
//	rec := woowup.NewReconciler(api, woowup.NewStatistics(), logger)
package connector

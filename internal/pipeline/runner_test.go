// Copyright 2025 Lumina Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nextdoor/costcharts/internal/cache"
	"github.com/nextdoor/costcharts/pkg/aws"
	"github.com/nextdoor/costcharts/pkg/config"
	"github.com/nextdoor/costcharts/pkg/cost"
	"github.com/nextdoor/costcharts/pkg/metrics"
)

func costResult(date string, groups ...aws.Group) aws.ResultByTime {
	t, err := time.Parse(aws.DateLayout, date)
	Expect(err).NotTo(HaveOccurred())
	return aws.ResultByTime{
		Start:  date,
		End:    t.AddDate(0, 0, 1).Format(aws.DateLayout),
		Groups: groups,
	}
}

func costGroup(purchaseType, amount string) aws.Group {
	return aws.Group{Keys: []string{purchaseType}, Amount: amount, Unit: "USD"}
}

var _ = Describe("Runner", func() {
	var (
		ctx       context.Context
		awsClient *aws.MockClient
		cfg       *config.Config
		stdout    *bytes.Buffer
		outDir    string
		runner    *Runner
	)

	BeforeEach(func() {
		ctx = context.Background()
		outDir = GinkgoT().TempDir()
		stdout = &bytes.Buffer{}

		awsClient = aws.NewMockClient()
		awsClient.CostExplorerClientInstance.Response = &aws.CostResponse{
			Pages: 2,
			Results: []aws.ResultByTime{
				costResult("2025-01-01",
					costGroup(cost.PurchaseTypeOnDemand, "10"),
					costGroup(cost.PurchaseTypeSpot, "5"),
					costGroup(cost.PurchaseTypeSavingsPlans, "5")),
				costResult("2025-01-02",
					costGroup(cost.PurchaseTypeOnDemand, "20"),
					costGroup(cost.PurchaseTypeSpot, "10"),
					costGroup(cost.PurchaseTypeSavingsPlans, "10")),
				costResult("2025-01-03",
					costGroup(cost.PurchaseTypeOnDemand, "25"),
					costGroup(cost.PurchaseTypeSpot, "10"),
					costGroup(cost.PurchaseTypeSavingsPlans, "5")),
			},
		}

		cfg = &config.Config{
			Service:      aws.DefaultService,
			Metric:       aws.DefaultMetric,
			Start:        "2025-01-01",
			End:          "2025-01-04",
			OutputDir:    outDir,
			OutputPrefix: config.DefaultOutputPrefix,
			Headless:     true,
			DPI:          50,
			Export:       []string{"csv"},
		}

		runner = &Runner{
			AWSClient: awsClient,
			Config:    cfg,
			Log:       logr.Discard(),
			Stdout:    stdout,
			Now: func() time.Time {
				return time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
			},
		}
	})

	Context("with a healthy account", func() {
		It("fetches, aggregates and writes every artifact", func() {
			res, err := runner.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			By("querying Cost Explorer once for the configured range")
			ce := awsClient.CostExplorerClientInstance
			Expect(ce.CallCount()).To(Equal(1))
			Expect(ce.Queries[0].Start.Format(aws.DateLayout)).To(Equal("2025-01-01"))
			Expect(ce.Queries[0].End.Format(aws.DateLayout)).To(Equal("2025-01-04"))
			Expect(ce.Queries[0].GroupBy).To(Equal(aws.DimensionPurchaseType))

			By("building a table whose total matches the raw records")
			Expect(res.Table.Len()).To(Equal(3))
			Expect(res.Table.Total()).To(BeNumerically("~", 100, 1e-9))
			Expect(res.Summary.Total).To(BeNumerically("~", 100, 1e-9))
			Expect(res.Pages).To(Equal(2))
			Expect(res.Cached).To(BeFalse())
			Expect(res.RunID).NotTo(BeEmpty())

			By("printing the summary report")
			Expect(stdout.String()).To(ContainSubstring("AWS COST SUMMARY REPORT"))
			Expect(stdout.String()).To(ContainSubstring("Total Cost: $100.00"))
			Expect(stdout.String()).To(ContainSubstring("Highest Cost Day: 2025-01-02 ($40.00)"))
			Expect(stdout.String()).NotTo(ContainSubstring("Active Commitments"))

			By("writing the charts and the export")
			Expect(res.Artifacts).To(Equal([]string{
				filepath.Join(outDir, "aws_costs_chart.png"),
				filepath.Join(outDir, "aws_costs_chart.html"),
				filepath.Join(outDir, "aws_costs_costs.csv"),
			}))
			png, err := os.ReadFile(res.Artifacts[0])
			Expect(err).NotTo(HaveOccurred())
			Expect(png[:8]).To(Equal([]byte("\x89PNG\r\n\x1a\n")))

			html, err := os.ReadFile(res.Artifacts[1])
			Expect(err).NotTo(HaveOccurred())
			Expect(string(html)).To(ContainSubstring("AWS EC2 Daily Costs by Purchase Type"))

			csv, err := os.ReadFile(res.Artifacts[2])
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.Count(string(csv), "\n")).To(Equal(4))

			Expect(res.Uploaded).To(BeEmpty())
		})

		It("zero-fills days Cost Explorer did not return", func() {
			awsClient.CostExplorerClientInstance.Response = &aws.CostResponse{
				Pages: 1,
				Results: []aws.ResultByTime{
					costResult("2025-01-01", costGroup(cost.PurchaseTypeSpot, "1.5")),
					costResult("2025-01-03", costGroup(cost.PurchaseTypeSpot, "2.5")),
				},
			}

			res, err := runner.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Table.DateLabels()).To(Equal([]string{"2025-01-01", "2025-01-02", "2025-01-03"}))
			Expect(res.Table.Column(0)).To(Equal([]float64{1.5, 0, 2.5}))
			Expect(res.Summary.Days).To(Equal(3))
		})

		It("reports an empty range without failing", func() {
			awsClient.CostExplorerClientInstance.Response = &aws.CostResponse{Pages: 1}

			res, err := runner.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Summary.Total).To(BeZero())
			Expect(res.Table.Len()).To(Equal(3))
			Expect(res.Artifacts).To(HaveLen(3))
		})

		It("resolves the account for the chart subtitle", func() {
			awsClient.IdentityClientInstance.Info.Alias = "prod"

			res, err := runner.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Account.AccountID).To(Equal("123456789012"))
			Expect(res.Account.Alias).To(Equal("prod"))

			html, err := os.ReadFile(res.Artifacts[1])
			Expect(err).NotTo(HaveOccurred())
			Expect(string(html)).To(ContainSubstring("Account: 123456789012 (prod)"))
		})
	})

	Context("when Cost Explorer fails", func() {
		It("returns the API error unchanged and writes nothing", func() {
			apiErr := errors.New("AccessDeniedException: not authorized to perform ce:GetCostAndUsage")
			awsClient.CostExplorerClientInstance.GetCostAndUsageError = apiErr

			res, err := runner.Run(ctx)
			Expect(err).To(HaveOccurred())
			Expect(res).To(BeNil())
			Expect(errors.Is(err, apiErr)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring(apiErr.Error()))

			entries, err := os.ReadDir(outDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
			Expect(stdout.String()).To(BeEmpty())
		})

		It("fails when the client cannot be created", func() {
			awsClient.CostExplorerError = errors.New("no credentials")

			_, err := runner.Run(ctx)
			Expect(err).To(MatchError(ContainSubstring("failed to create Cost Explorer client: no credentials")))
		})

		It("fails on malformed amounts", func() {
			awsClient.CostExplorerClientInstance.Response = &aws.CostResponse{
				Pages:   1,
				Results: []aws.ResultByTime{costResult("2025-01-01", costGroup(cost.PurchaseTypeSpot, "n/a"))},
			}

			_, err := runner.Run(ctx)
			Expect(err).To(MatchError(ContainSubstring("failed to process cost data")))
		})
	})

	Context("with an inverted date range", func() {
		It("rejects a start after today before calling the API", func() {
			cfg.Start = "2999-01-01"
			cfg.End = ""

			res, err := runner.Run(ctx)
			Expect(res).To(BeNil())
			Expect(err).To(MatchError(ContainSubstring("invalid date range: start 2999-01-01 is not before end 2025-02-01")))
			Expect(awsClient.CostExplorerClientInstance.CallCount()).To(BeZero())
			Expect(stdout.String()).To(BeEmpty())
		})
	})

	Context("when the account cannot be resolved", func() {
		It("falls back to an unknown account under the configured profile", func() {
			awsClient.IdentityClientInstance.GetAccountInfoError = errors.New("AccessDenied")
			cfg.Profile = "billing"

			res, err := runner.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Account.AccountID).To(Equal("Unknown"))
			Expect(res.Account.Profile).To(Equal("billing"))
		})

		It("uses the default profile name when none is configured", func() {
			awsClient.IdentityError = errors.New("no sts")

			res, err := runner.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Account.Profile).To(Equal(aws.DefaultProfileName))
		})
	})

	Context("with a response cache", func() {
		var memCache *cache.MemoryCache

		BeforeEach(func() {
			memCache = cache.NewMemoryCache(time.Hour)
			runner.Cache = memCache
		})

		It("stores the response and serves the next run from it", func() {
			first, err := runner.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Cached).To(BeFalse())
			Expect(memCache.Len()).To(Equal(1))

			second, err := runner.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Cached).To(BeTrue())
			Expect(second.Pages).To(BeZero())
			Expect(second.Summary.Total).To(BeNumerically("~", first.Summary.Total, 1e-9))
			Expect(awsClient.CostExplorerClientInstance.CallCount()).To(Equal(1))
		})

		It("does not cache failed fetches", func() {
			awsClient.CostExplorerClientInstance.GetCostAndUsageError = errors.New("ThrottlingException")

			_, err := runner.Run(ctx)
			Expect(err).To(HaveOccurred())
			Expect(memCache.Len()).To(BeZero())
		})
	})

	Context("with commitments enabled", func() {
		BeforeEach(func() {
			cfg.Commitments = config.CommitmentsConfig{
				Enabled: true,
				Regions: []string{"us-west-2", "eu-west-1"},
			}
			awsClient.SavingsPlansClientInstance.SavingsPlans = []aws.SavingsPlan{{
				SavingsPlanARN:  "arn:aws:savingsplans::123456789012:savingsplan/sp-1",
				SavingsPlanID:   "sp-1",
				SavingsPlanType: "Compute",
				State:           "active",
				Commitment:      1.5,
			}}
			awsClient.EC2Clients["us-west-2"] = &aws.MockEC2Client{
				ReservedInstances: []aws.ReservedInstance{
					{ReservedInstanceID: "ri-2", InstanceType: "m5.large", InstanceCount: 2, Region: "us-west-2"},
					{ReservedInstanceID: "ri-1", InstanceType: "c5.xlarge", InstanceCount: 1, Region: "us-west-2"},
				},
			}
			awsClient.EC2Clients["eu-west-1"] = &aws.MockEC2Client{
				ReservedInstances: []aws.ReservedInstance{
					{ReservedInstanceID: "ri-3", InstanceType: "r5.large", InstanceCount: 4, Region: "eu-west-1"},
				},
			}
		})

		It("queries every region and prints the commitments", func() {
			res, err := runner.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Commitments).NotTo(BeNil())
			Expect(res.Commitments.SavingsPlans).To(HaveLen(1))

			ids := make([]string, 0, len(res.Commitments.ReservedInstances))
			for _, ri := range res.Commitments.ReservedInstances {
				ids = append(ids, ri.ReservedInstanceID)
			}
			Expect(ids).To(Equal([]string{"ri-3", "ri-1", "ri-2"}))
			Expect(res.Commitments.InstanceCount()).To(Equal(int32(7)))

			Expect(awsClient.SavingsPlansClientInstance.DescribeSavingsPlansCallCount).To(Equal(1))
			Expect(awsClient.EC2Clients["us-west-2"].DescribeReservedInstancesCallCount).To(Equal(1))
			Expect(awsClient.EC2Clients["eu-west-1"].DescribeReservedInstancesCallCount).To(Equal(1))

			Expect(stdout.String()).To(ContainSubstring("Active Commitments:"))
			Expect(stdout.String()).To(ContainSubstring("Savings Plans: 1 ($1.50/hour)"))
			Expect(stdout.String()).To(ContainSubstring("Reserved Instances: 7"))
		})

		It("omits the section when a lookup fails", func() {
			awsClient.EC2Clients["eu-west-1"].DescribeReservedInstancesError = errors.New("UnauthorizedOperation")

			res, err := runner.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Commitments).To(BeNil())
			Expect(stdout.String()).NotTo(ContainSubstring("Active Commitments"))
		})
	})

	Context("with an upload bucket", func() {
		BeforeEach(func() {
			cfg.Upload = config.UploadConfig{Bucket: "reports", Prefix: "costs/daily"}
		})

		It("uploads every artifact under the prefix", func() {
			res, err := runner.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Uploaded).To(Equal([]string{
				"s3://reports/costs/daily/aws_costs_chart.png",
				"s3://reports/costs/daily/aws_costs_chart.html",
				"s3://reports/costs/daily/aws_costs_costs.csv",
			}))

			s3 := awsClient.S3ClientInstance
			Expect(s3.Objects).To(HaveLen(3))
			Expect(s3.ContentTypes["reports/costs/daily/aws_costs_chart.png"]).To(Equal("image/png"))
			Expect(s3.ContentTypes["reports/costs/daily/aws_costs_costs.csv"]).To(Equal("text/csv; charset=utf-8"))

			local, err := os.ReadFile(res.Artifacts[1])
			Expect(err).NotTo(HaveOccurred())
			Expect(s3.Objects["reports/costs/daily/aws_costs_chart.html"]).To(Equal(local))
		})

		It("fails the run when an upload fails", func() {
			awsClient.S3ClientInstance.PutObjectError = errors.New("AccessDenied")

			_, err := runner.Run(ctx)
			Expect(err).To(MatchError(ContainSubstring("AccessDenied")))
		})
	})

	Context("with metrics", func() {
		var (
			reg *prometheus.Registry
			m   *metrics.Metrics
		)

		BeforeEach(func() {
			reg = prometheus.NewRegistry()
			m = metrics.NewMetrics(reg)
			runner.Metrics = m
			runner.Gatherer = reg
		})

		It("records the run summary", func() {
			_, err := runner.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(testutil.ToFloat64(m.CostTotalDollars)).To(BeNumerically("~", 100, 1e-9))
			Expect(testutil.ToFloat64(m.Days)).To(Equal(3.0))
			Expect(testutil.ToFloat64(m.APIPages)).To(Equal(2.0))
			Expect(testutil.ToFloat64(m.CacheHits)).To(BeZero())
		})

		It("writes the textfile when configured", func() {
			cfg.Metrics.Textfile = filepath.Join(outDir, "costcharts.prom")

			_, err := runner.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			data, err := os.ReadFile(cfg.Metrics.Textfile)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(metrics.MetricCostTotalDollars + " 100"))
		})

		It("fails when publishing is configured without a gatherer", func() {
			runner.Gatherer = nil
			cfg.Metrics.Textfile = filepath.Join(outDir, "costcharts.prom")

			_, err := runner.Run(ctx)
			Expect(err).To(MatchError(ContainSubstring("without a gatherer")))
		})
	})
})

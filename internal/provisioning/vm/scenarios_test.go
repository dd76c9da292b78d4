package vm_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"

	"github.com/imamik/nbctl/internal/platform/netbox"
	"github.com/imamik/nbctl/internal/provisioning"
	"github.com/imamik/nbctl/internal/provisioning/vm"
	nbtesting "github.com/imamik/nbctl/internal/testing"
)

type memorySink struct {
	journals map[string][]byte
}

func (s *memorySink) Store(_ context.Context, id string, data []byte) (string, error) {
	s.journals[id] = data
	return "memory://" + id, nil
}

func kinds(refs []netbox.ObjectRef) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Kind)
	}
	return out
}

func forbidden() error {
	return &netbox.APIError{StatusCode: http.StatusForbidden, Method: http.MethodDelete, Path: "/api/virtualization/interfaces/1/", Detail: "permission denied"}
}

var _ = Describe("create-vm", func() {
	var (
		fx   *nbtesting.Standard
		inv  *nbtesting.FakeInventory
		pctx *provisioning.Context
		sink *memorySink
		spec vm.Spec
	)

	BeforeEach(func() {
		fx = nbtesting.NewStandard()
		inv = fx.Inventory
		pctx = nbtesting.NewProvisioningContext(context.Background(), inv)
		sink = &memorySink{journals: map[string][]byte{}}
		pctx.Journal = sink
		spec = vm.Spec{
			Name:           "web-1",
			FQDN:           "web-1.example.net",
			Tenant:         "acme",
			Site:           "dc1",
			Cluster:        "c1",
			Platform:       "ubuntu22",
			CPUs:           2,
			MemoryMB:       2048,
			DiskGB:         20,
			VLANID:         100,
			StorageType:    "lvm",
			StorageDevices: []string{"node-a"},
		}
	})

	provision := func(opts ...vm.Option) (*vm.Result, error) {
		return vm.NewProvisioner(opts...).Provision(pctx, vm.NewRequest(spec))
	}

	journal := func(id string) provisioning.Journal {
		var j provisioning.Journal
		Expect(sink.journals).To(HaveKey(id))
		Expect(json.Unmarshal(sink.journals[id], &j)).To(Succeed())
		return j
	}

	Context("when every step succeeds", func() {
		It("commits all records in order", func() {
			res, err := provision()
			Expect(err).NotTo(HaveOccurred())

			Expect(res.IP.Address).To(Equal("10.0.0.3/24"))
			Expect(res.IP.DNSName).To(Equal("web-1.example.net"))
			Expect(strings.ToLower(res.MAC)).To(HavePrefix("52:54:00:"))
			Expect(strings.EqualFold(res.Interface.MACAddress, res.MAC)).To(BeTrue())
			Expect(res.Identifier).To(HaveLen(36))
			Expect(res.Slot).To(BeNil())

			stored := inv.VMs[res.VM.ID]
			Expect(stored.Status.Value).To(Equal(netbox.StatusPlanned))
			Expect(stored.PrimaryIP4).NotTo(BeNil())
			Expect(stored.PrimaryIP4.ID).To(Equal(res.IP.ID))
			Expect(stored.CustomFields.String("uuid")).To(Equal(res.Identifier))
			Expect(stored.CustomFields.String("storage_type")).To(Equal("lvm"))
			Expect(stored.CustomFields.String("storage_pool")).To(Equal("vg0"))

			iface := inv.VMInterfaces[res.Interface.ID]
			Expect(iface.Name).To(Equal("eth0"))
			Expect(iface.UntaggedVLAN).NotTo(BeNil())
			Expect(iface.UntaggedVLAN.ID).To(Equal(fx.VLAN.ID))
			Expect(inv.IPs[res.IP.ID].AssignedObjectType).To(Equal(netbox.ContentTypeVMInterface))

			Expect(res.Service.Name).To(Equal("web-1.example.net"))
			Expect(res.Service.Ports).To(Equal([]int{22}))

			Expect(inv.Mutations()).To(Equal([]string{
				"AllocateIP", "CreateVirtualMachine", "CreateVMInterface",
				"UpdateIPAddress", "UpdateVirtualMachine", "CreateService",
			}))
			Expect(inv.Deleted()).To(BeEmpty())
		})

		It("writes a committed journal with every logged step", func() {
			res, err := provision()
			Expect(err).NotTo(HaveOccurred())

			j := journal(res.TransactionID)
			Expect(j.Outcome).To(Equal(provisioning.OutcomeCommitted))
			Expect(j.Steps).To(HaveLen(4))
			Expect(j.Steps[0].Name).To(Equal(vm.StepIP))
			Expect(j.Steps[3].Name).To(Equal(vm.StepService))
		})

		It("skips the ssh service without an FQDN", func() {
			spec.FQDN = ""
			res, err := provision()
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Service).To(BeNil())
			Expect(inv.Services).To(BeEmpty())
		})

		It("uses the requested address", func() {
			spec.Address = "10.0.0.42"
			res, err := provision()
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IP.Address).To(Equal("10.0.0.42/24"))
			Expect(inv.Mutations()[0]).To(Equal("CreateIPAddress"))
		})

		It("allocates the first free storage slot of the cluster", func() {
			inv.AddVM("db-1", fx.Cluster, "active", netbox.CustomFields{"storage_id": 1})
			spec.StorageType = "multipath"
			spec.StorageDevices = []string{"san-1"}

			res, err := provision()
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Slot).NotTo(BeNil())
			Expect(*res.Slot).To(Equal(2))

			slot, ok := inv.VMs[res.VM.ID].CustomFields.Int("storage_id")
			Expect(ok).To(BeTrue())
			Expect(slot).To(Equal(2))
			device, ok := inv.VMs[res.VM.ID].CustomFields.Int("storage_device")
			Expect(ok).To(BeTrue())
			Expect(device).To(Equal(fx.SAN.ID))
		})
	})

	Context("when the interface create fails", func() {
		BeforeEach(func() {
			inv.Fail("CreateVMInterface", errors.New("connection reset by peer"))
		})

		It("deletes the VM and then the address", func() {
			_, err := provision()
			Expect(err).To(HaveOccurred())

			var rb *provisioning.RolledBackError
			Expect(errors.As(err, &rb)).To(BeTrue())
			Expect(rb.Clean()).To(BeTrue())
			Expect(provisioning.IsRemote(err)).To(BeTrue())
			Expect(err.Error()).To(HavePrefix("interface: connection reset by peer"))

			Expect(kinds(inv.Deleted())).To(Equal([]string{netbox.KindVirtualMachine, netbox.KindIPAddress}))
			Expect(inv.VMs).To(BeEmpty())
			for _, ip := range inv.IPs {
				Expect(ip.Address).NotTo(Equal("10.0.0.3/24"))
			}
		})

		It("journals the rollback", func() {
			res, err := provision()
			Expect(err).To(HaveOccurred())

			j := journal(res.TransactionID)
			Expect(j.Outcome).To(Equal(provisioning.OutcomeRolledBack))
			Expect(j.Error).To(ContainSubstring("connection reset by peer"))
			Expect(j.Transitions[len(j.Transitions)-1].To).To(Equal(provisioning.StateFailed))
		})
	})

	Context("when the service create fails", func() {
		BeforeEach(func() {
			inv.Fail("CreateService", errors.New("gateway timeout"))
		})

		It("walks the log newest first", func() {
			_, err := provision()
			Expect(provisioning.IsRolledBack(err)).To(BeTrue())
			Expect(kinds(inv.Deleted())).To(Equal([]string{
				netbox.KindVMInterface, netbox.KindVirtualMachine, netbox.KindIPAddress,
			}))
		})

		It("reports objects it could not delete and keeps going", func() {
			inv.Fail("Delete", forbidden())

			res, err := provision()

			var rb *provisioning.RolledBackError
			Expect(errors.As(err, &rb)).To(BeTrue())
			Expect(rb.Failures).To(HaveLen(1))
			Expect(rb.Failures[0].Step.Name).To(Equal(vm.StepInterface))
			Expect(err.Error()).To(HavePrefix("service: gateway timeout"))
			Expect(err.Error()).To(ContainSubstring("rollback incomplete"))
			Expect(kinds(inv.Deleted())).To(Equal([]string{netbox.KindVirtualMachine, netbox.KindIPAddress}))
			Expect(journal(res.TransactionID).Outcome).To(Equal(provisioning.OutcomeRollbackIncomplete))
		})
	})

	Context("when the store hands out the gateway", func() {
		BeforeEach(func() {
			fx.FreeGateway()
		})

		It("aborts and deletes the address", func() {
			_, err := provision()
			Expect(provisioning.IsConsistency(err)).To(BeTrue())
			Expect(provisioning.IsRolledBack(err)).To(BeTrue())
			Expect(inv.Mutations()).To(Equal([]string{"AllocateIP", "Delete"}))
			Expect(kinds(inv.Deleted())).To(Equal([]string{netbox.KindIPAddress}))
			Expect(inv.VMs).To(BeEmpty())
		})
	})

	Context("when the request is invalid", func() {
		It("fails validation without touching the store", func() {
			spec.StorageType = "drbd"
			res, err := provision()

			Expect(provisioning.IsValidation(err)).To(BeTrue())
			Expect(provisioning.IsRolledBack(err)).To(BeFalse())
			Expect(inv.Mutations()).To(BeEmpty())
			Expect(journal(res.TransactionID).Outcome).To(Equal(provisioning.OutcomeFailed))
		})

		It("fails when every MAC candidate conflicts", func() {
			pctx.Config.Allocation.MACPrefix = "52:54:00:00:00"
			pctx.Config.Allocation.MACAttempts = 3
			other := inv.AddVM("db-1", fx.Cluster, "active", nil)
			for i := 0; i < 256; i++ {
				inv.AddVMInterface(other, "eth0", "52:54:00:00:00:"+hexByte(i))
			}

			_, err := provision()
			Expect(provisioning.IsAllocationExhausted(err)).To(BeTrue())
			Expect(inv.Mutations()).To(BeEmpty())
		})
	})

	Context("after a successful commit", func() {
		It("does not prompt in batch mode", func() {
			_, err := provision()
			Expect(err).NotTo(HaveOccurred())
		})

		It("keeps the VM when the operator declines", func() {
			confirmer := &nbtesting.MockConfirmer{}
			confirmer.On("Confirm", vm.DiscardPrompt, false).Return(false, nil)

			res, err := provision(vm.WithConfirmer(confirmer))
			Expect(err).NotTo(HaveOccurred())
			Expect(inv.VMs).To(HaveKey(res.VM.ID))
			confirmer.AssertExpectations(GinkgoT())
		})

		It("rolls everything back when the operator discards", func() {
			confirmer := &nbtesting.MockConfirmer{}
			confirmer.On("Confirm", mock.Anything, false).Return(true, nil)

			res, err := provision(vm.WithConfirmer(confirmer))
			Expect(vm.IsDiscarded(err)).To(BeTrue())
			Expect(inv.VMs).To(BeEmpty())
			Expect(inv.Services).To(BeEmpty())
			Expect(kinds(inv.Deleted())).To(Equal([]string{
				netbox.KindService, netbox.KindVMInterface, netbox.KindVirtualMachine, netbox.KindIPAddress,
			}))
			Expect(journal(res.TransactionID).Outcome).To(Equal(provisioning.OutcomeDiscarded))
		})
	})

	Context("in a dry run", func() {
		It("validates and allocates without writing", func() {
			spec.StorageType = "drbd"
			spec.StorageDevices = []string{"node-a", "node-b"}

			res, err := provision(vm.WithDryRun(true))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.DryRun).To(BeTrue())
			Expect(res.MAC).NotTo(BeEmpty())
			Expect(res.Identifier).NotTo(BeEmpty())
			Expect(res.Slot).NotTo(BeNil())
			Expect(*res.Slot).To(Equal(1))
			Expect(res.VM).To(BeNil())
			Expect(inv.Mutations()).To(BeEmpty())
			Expect(journal(res.TransactionID).Outcome).To(Equal(provisioning.OutcomeDryRun))
		})
	})
})

func hexByte(i int) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[i>>4], digits[i&0x0f]})
}

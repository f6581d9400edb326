// Package console implements the interactive menu caller. It collects raw
// text, calls the customer service and renders the outcome; it never talks
// to the store directly.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Raymond9734/customer-registry/internal/models"
	"github.com/Raymond9734/customer-registry/internal/service"
)

const menuText = `
========== MENU ==========
1 - Create customer
2 - List customers
3 - Update customer
4 - Delete customer
5 - Search customers
6 - Show customer
0 - Exit
Choose an option: `

// Menu runs the console loop over an input and an output stream
type Menu struct {
	customers service.CustomerService
	in        *bufio.Scanner
	out       io.Writer
}

// NewMenu creates a new console menu
func NewMenu(customers service.CustomerService, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		customers: customers,
		in:        bufio.NewScanner(in),
		out:       out,
	}
}

// Run shows the menu until the user exits, the input ends or ctx is done.
// Only store failures that make the session pointless are returned.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(m.out, menuText)
		line, ok := m.readLine()
		if !ok {
			fmt.Fprintln(m.out)
			return nil
		}

		option, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			fmt.Fprintln(m.out, "Invalid input. Enter a number.")
			continue
		}

		switch option {
		case 1:
			err = m.create(ctx)
		case 2:
			err = m.list(ctx, "")
		case 3:
			err = m.update(ctx)
		case 4:
			err = m.delete(ctx)
		case 5:
			filter, _ := m.prompt("Filter (exact name, email or phone): ")
			err = m.list(ctx, filter)
		case 6:
			err = m.show(ctx)
		case 0:
			fmt.Fprintln(m.out, "Exiting...")
			return nil
		default:
			fmt.Fprintln(m.out, "Invalid option!")
		}

		if err != nil {
			return err
		}
	}
}

func (m *Menu) create(ctx context.Context) error {
	input, ok := m.readInput("Name: ", "Phone: ", "Email: ")
	if !ok {
		return nil
	}

	customer, err := m.customers.Create(ctx, input)
	if err != nil {
		return m.report(err)
	}

	fmt.Fprintf(m.out, "Customer created with ID: %d\n", customer.ID)
	return nil
}

func (m *Menu) list(ctx context.Context, filter string) error {
	customers, err := m.customers.List(ctx, filter)
	if err != nil {
		return m.report(err)
	}

	if len(customers) == 0 {
		fmt.Fprintln(m.out, "No customers found.")
		return nil
	}

	for _, c := range customers {
		m.printCustomer(c)
	}
	return nil
}

func (m *Menu) show(ctx context.Context) error {
	id, ok := m.readID("Customer ID: ")
	if !ok {
		return nil
	}

	customer, err := m.customers.Get(ctx, id)
	if err != nil {
		return m.report(err)
	}

	m.printCustomer(customer)
	return nil
}

func (m *Menu) update(ctx context.Context) error {
	id, ok := m.readID("ID of the customer to update: ")
	if !ok {
		return nil
	}

	input, ok := m.readInput("New name: ", "New phone: ", "New email: ")
	if !ok {
		return nil
	}

	if _, err := m.customers.Update(ctx, id, input); err != nil {
		return m.report(err)
	}

	fmt.Fprintln(m.out, "Customer updated successfully!")
	return nil
}

func (m *Menu) delete(ctx context.Context) error {
	id, ok := m.readID("ID of the customer to delete: ")
	if !ok {
		return nil
	}

	answer, _ := m.prompt(fmt.Sprintf("Delete customer %d? [y/N]: ", id))
	if !strings.EqualFold(strings.TrimSpace(answer), "y") {
		fmt.Fprintln(m.out, "Deletion cancelled.")
		return nil
	}

	if err := m.customers.Delete(ctx, id); err != nil {
		return m.report(err)
	}

	fmt.Fprintln(m.out, "Customer deleted successfully!")
	return nil
}

// report prints expected outcomes and returns nothing for them; store
// failures are printed and returned so the session ends
func (m *Menu) report(err error) error {
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		fmt.Fprintln(m.out, "Validation errors:")
		for _, v := range validationErr.Violations {
			fmt.Fprintf(m.out, "- %s: %s\n", v.Field, v.Message)
		}
		return nil

	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrConflict):
		fmt.Fprintln(m.out, err.Error())
		return nil

	default:
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return err
	}
}

func (m *Menu) printCustomer(c *models.Customer) {
	fmt.Fprintf(m.out, "ID: %d | Name: %s | Phone: %s | Email: %s\n", c.ID, c.Name, c.Phone, c.Email)
}

// readInput prompts for the three fields in the order name, phone, email
func (m *Menu) readInput(namePrompt, phonePrompt, emailPrompt string) (*models.CustomerInput, bool) {
	name, ok := m.prompt(namePrompt)
	if !ok {
		return nil, false
	}
	phone, ok := m.prompt(phonePrompt)
	if !ok {
		return nil, false
	}
	email, ok := m.prompt(emailPrompt)
	if !ok {
		return nil, false
	}

	return &models.CustomerInput{Name: name, Email: email, Phone: phone}, true
}

func (m *Menu) readID(label string) (int64, bool) {
	line, ok := m.prompt(label)
	if !ok {
		return 0, false
	}

	id, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
	if err != nil {
		fmt.Fprintln(m.out, "Invalid ID.")
		return 0, false
	}
	return id, true
}

func (m *Menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	return m.readLine()
}

func (m *Menu) readLine() (string, bool) {
	if !m.in.Scan() {
		return "", false
	}
	return m.in.Text(), true
}

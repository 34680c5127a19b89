package models

// Every row in the till carries the restaurant (tenant) it belongs to. The
// tenant itself lives with the identity provider; only its id is stored.

func (o *Order) OwnerTenant() uint             { return o.TenantID }
func (i *OrderLineItem) OwnerTenant() uint     { return i.TenantID }
func (t *Table) OwnerTenant() uint             { return t.TenantID }
func (t *Transaction) OwnerTenant() uint       { return t.TenantID }
func (e *Expense) OwnerTenant() uint           { return e.TenantID }
func (c *OrderCancellation) OwnerTenant() uint { return c.TenantID }
func (d *DailyClosing) OwnerTenant() uint      { return d.TenantID }
